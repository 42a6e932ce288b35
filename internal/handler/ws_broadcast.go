package handler

// BroadcastRaceEvent implements service.Broadcaster using the WebSocket hub.
func (h *Hub) BroadcastRaceEvent(raceID string, eventType string, data any) {
	h.BroadcastToRace(raceID, WSEvent{
		Type:   eventType,
		RaceID: raceID,
		Data:   data,
	})
}
