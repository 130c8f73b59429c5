// Package voice wires a call session to the OpenAI Realtime API. Audio
// capture, speech recognition and synthesis all happen on the provider
// side; this package only manages the WebRTC leg, registers the tool
// schemas and services function calls through the dispatcher.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pion/webrtc/v3"
	"go.uber.org/zap"

	"reservation-agent/internal/tools"
)

const (
	sessionsURL = "https://api.openai.com/v1/realtime/sessions"
	realtimeURL = "https://api.openai.com/v1/realtime"

	toolCallTimeout = 15 * time.Second
)

type RealtimeConfig struct {
	APIKey       string
	Model        string
	Voice        string
	Instructions string
}

// Realtime is one data-channel connection to the Realtime API, bound to
// one call session.
type Realtime struct {
	cfg  RealtimeConfig
	disp *tools.Dispatcher
	sess *tools.Session
	log  *zap.Logger

	pc             *webrtc.PeerConnection
	dc             *webrtc.DataChannel
	ephemeralToken string
	hc             *http.Client
}

func NewRealtime(cfg RealtimeConfig, disp *tools.Dispatcher, sess *tools.Session, log *zap.Logger) *Realtime {
	return &Realtime{
		cfg:  cfg,
		disp: disp,
		sess: sess,
		log:  log,
		hc:   &http.Client{Timeout: 10 * time.Second},
	}
}

type ephemeralTokenResponse struct {
	ClientSecret struct {
		Value     string `json:"value"`
		ExpiresAt int64  `json:"expires_at"`
	} `json:"client_secret"`
}

// fetchEphemeralToken trades the API key for a session-scoped token.
func (r *Realtime) fetchEphemeralToken(ctx context.Context) error {
	reqBody := map[string]any{
		"model": r.cfg.Model,
		"voice": r.cfg.Voice,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sessionsURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ephemeral token: %s - %s", resp.Status, string(body))
	}

	var tokenResp ephemeralTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return err
	}
	r.ephemeralToken = tokenResp.ClientSecret.Value
	return nil
}

// Connect establishes the WebRTC peer and the "oai-events" data channel,
// then performs the SDP exchange against the Realtime endpoint.
func (r *Realtime) Connect(ctx context.Context, api *webrtc.API) error {
	if err := r.fetchEphemeralToken(ctx); err != nil {
		return fmt.Errorf("realtime token: %w", err)
	}

	pc, err := api.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: []string{"stun:stun.l.google.com:19302"}},
		},
	})
	if err != nil {
		return fmt.Errorf("create peer connection: %w", err)
	}
	r.pc = pc

	// the audio media section; the actual caller leg is bridged by the
	// external transport
	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeAudio); err != nil {
		return fmt.Errorf("add audio transceiver: %w", err)
	}

	ordered := true
	dc, err := pc.CreateDataChannel("oai-events", &webrtc.DataChannelInit{Ordered: &ordered})
	if err != nil {
		return fmt.Errorf("create data channel: %w", err)
	}
	r.dc = dc

	dc.OnOpen(func() {
		r.log.Info("realtime data channel open")
		r.configureSession()
	})
	dc.OnMessage(func(msg webrtc.DataChannelMessage) {
		r.handleEvent(msg.Data)
	})

	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return fmt.Errorf("create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("set local description: %w", err)
	}

	answer, err := r.exchangeSDP(ctx, offer.SDP)
	if err != nil {
		return fmt.Errorf("sdp exchange: %w", err)
	}
	if err := pc.SetRemoteDescription(webrtc.SessionDescription{
		Type: webrtc.SDPTypeAnswer,
		SDP:  answer,
	}); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	return nil
}

func (r *Realtime) exchangeSDP(ctx context.Context, offerSDP string) (string, error) {
	url := realtimeURL + "?model=" + r.cfg.Model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte(offerSDP)))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+r.ephemeralToken)
	req.Header.Set("Content-Type", "application/sdp")

	resp, err := r.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	answerSDP, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("realtime answer: %s - %s", resp.Status, string(answerSDP))
	}
	return string(answerSDP), nil
}

// configureSession registers the persona and the tool surface.
func (r *Realtime) configureSession() {
	update := map[string]any{
		"type": "session.update",
		"session": map[string]any{
			"modalities":          []string{"text", "audio"},
			"instructions":        r.cfg.Instructions,
			"voice":               r.cfg.Voice,
			"input_audio_format":  "pcm16",
			"output_audio_format": "pcm16",
			"input_audio_transcription": map[string]string{
				"model": "whisper-1",
			},
			"tools":       tools.Definitions(),
			"tool_choice": "auto",
		},
	}
	if err := r.send(update); err != nil {
		r.log.Error("session.update failed", zap.Error(err))
	}
}

// Say asks the model to speak the given line verbatim. Used for the
// greeting before the caller has said anything.
func (r *Realtime) Say(text string) {
	err := r.send(map[string]any{
		"type": "response.create",
		"response": map[string]any{
			"instructions": "Say exactly: " + text,
		},
	})
	if err != nil {
		r.log.Error("greeting failed", zap.Error(err))
	}
}

func (r *Realtime) handleEvent(data []byte) {
	var event map[string]any
	if err := json.Unmarshal(data, &event); err != nil {
		r.log.Warn("unparseable realtime event", zap.Error(err))
		return
	}

	eventType, _ := event["type"].(string)
	switch eventType {
	case "session.created":
		r.log.Info("realtime session created")

	case "conversation.item.input_audio_transcription.completed":
		if transcript, ok := event["transcript"].(string); ok {
			r.sess.AddLine("user", transcript)
			r.log.Debug("stt", zap.String("transcript", transcript))
		}

	case "response.audio_transcript.done":
		if transcript, ok := event["transcript"].(string); ok {
			r.sess.AddLine("assistant", transcript)
		}

	case "response.function_call_arguments.done":
		name, _ := event["name"].(string)
		callID, _ := event["call_id"].(string)
		arguments, _ := event["arguments"].(string)
		r.handleFunctionCall(name, callID, arguments)

	case "error":
		r.log.Error("realtime error event", zap.Any("event", event))
	}
}

func (r *Realtime) handleFunctionCall(name, callID, arguments string) {
	ctx, cancel := context.WithTimeout(context.Background(), toolCallTimeout)
	defer cancel()

	result := r.disp.Dispatch(ctx, r.sess, name, arguments)

	err := r.send(map[string]any{
		"type": "conversation.item.create",
		"item": map[string]any{
			"type":    "function_call_output",
			"call_id": callID,
			"output":  result,
		},
	})
	if err != nil {
		r.log.Error("function output send failed", zap.Error(err))
		return
	}
	// resume the turn so the model speaks the result
	if err := r.send(map[string]any{"type": "response.create"}); err != nil {
		r.log.Error("response.create failed", zap.Error(err))
	}
}

func (r *Realtime) send(v any) error {
	if r.dc == nil || r.dc.ReadyState() != webrtc.DataChannelStateOpen {
		return fmt.Errorf("data channel not open")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.dc.SendText(string(b))
}

func (r *Realtime) Close() {
	if r.dc != nil {
		r.dc.Close()
	}
	if r.pc != nil {
		r.pc.Close()
	}
}
