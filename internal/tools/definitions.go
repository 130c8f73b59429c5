package tools

// Definitions returns the tool schemas registered with the realtime
// session. This is the single source of truth for the tool surface; the
// dispatcher's switch must cover every name listed here.
func Definitions() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"type":        "function",
			"name":        "identify_user",
			"description": "Identify the caller by their phone number and name. The number can be in any spoken format; digits are extracted automatically.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"contact_number": map[string]interface{}{
						"type":        "string",
						"description": "The caller's contact number, in any format",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "The caller's full name (optional)",
					},
				},
				"required": []string{"contact_number"},
			},
		},
		{
			"type":        "function",
			"name":        "fetch_slots",
			"description": "Fetch available reservation slots for today and tomorrow.",
			"parameters": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			"type":        "function",
			"name":        "book_appointment",
			"description": "Book a reservation. If the caller is not identified yet, pass name and contact_number to identify and book in one step.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"start_time": map[string]interface{}{
						"type":        "string",
						"description": "Start time in ISO format, e.g. 2026-08-30T19:00:00",
					},
					"num_people": map[string]interface{}{
						"type":        "integer",
						"description": "Party size",
					},
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Caller's full name (only when not yet identified)",
					},
					"contact_number": map[string]interface{}{
						"type":        "string",
						"description": "Caller's contact number (only when not yet identified)",
					},
					"details": map[string]interface{}{
						"type":        "string",
						"description": "Special requests or preferences (optional)",
					},
				},
				"required": []string{"start_time", "num_people"},
			},
		},
		{
			"type":        "function",
			"name":        "retrieve_appointments",
			"description": "List the identified caller's reservations, including status and id.",
			"parameters": map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			"type":        "function",
			"name":        "cancel_appointment",
			"description": "Cancel a reservation by id.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"appointment_id": map[string]interface{}{
						"type":        "string",
						"description": "Id of the reservation to cancel, from retrieve_appointments",
					},
				},
				"required": []string{"appointment_id"},
			},
		},
		{
			"type":        "function",
			"name":        "modify_appointment",
			"description": "Change the time, party size or details of an existing reservation. Supply only the fields that change.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"appointment_id": map[string]interface{}{
						"type":        "string",
						"description": "Id of the reservation to modify",
					},
					"new_start_time": map[string]interface{}{
						"type":        "string",
						"description": "New start time in ISO format (optional)",
					},
					"new_num_people": map[string]interface{}{
						"type":        "integer",
						"description": "New party size (optional)",
					},
					"new_details": map[string]interface{}{
						"type":        "string",
						"description": "Updated preferences (optional)",
					},
				},
				"required": []string{"appointment_id"},
			},
		},
		{
			"type":        "function",
			"name":        "update_booking_details",
			"description": "Record special occasions or dietary requirements on a reservation.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"appointment_id": map[string]interface{}{
						"type":        "string",
						"description": "Id of the reservation to annotate",
					},
					"details": map[string]interface{}{
						"type":        "string",
						"description": "The details to record",
					},
				},
				"required": []string{"appointment_id", "details"},
			},
		},
		{
			"type":        "function",
			"name":        "end_conversation",
			"description": "Call this when the caller says goodbye or is done. It triggers the final summary and closes the session gracefully.",
			"parameters": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"summary": map[string]interface{}{
						"type":        "string",
						"description": "Brief summary of the call (optional)",
					},
				},
			},
		},
	}
}
