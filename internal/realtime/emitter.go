package realtime

import (
	"time"

	"github.com/pulsehq/clientpulse/internal/clients"
	"github.com/pulsehq/clientpulse/internal/simulation"
)

// Emitter adapts the hub to the simulation service's display surface. Each
// recomputation is pushed as one simulation.updated event; the riskLevel is
// duplicated at the top level so subscription filters can match on it.
type Emitter struct {
	hub *Hub
}

// NewEmitter creates an emitter that broadcasts through the given hub.
func NewEmitter(hub *Hub) *Emitter {
	return &Emitter{hub: hub}
}

// SimulationUpdated implements simulation.EventEmitter.
func (e *Emitter) SimulationUpdated(session *simulation.Session) {
	e.hub.BroadcastSimulationUpdate(map[string]interface{}{
		"sessionId": session.ID,
		"params":    session.Params,
		"result":    session.Result,
		"riskLevel": string(session.Result.RiskLevel),
		"updatedAt": session.UpdatedAt,
	})
}

// ClientUpdated implements clients.EventEmitter. Directory edits are rarer
// than simulation gestures but dashboards watch both.
func (e *Emitter) ClientUpdated(client *clients.Client) {
	e.hub.Broadcast(&Event{
		Type:      EventClientUpdated,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"clientId":  client.ID,
			"name":      client.Name,
			"result":    client.Result,
			"riskLevel": string(client.Result.RiskLevel),
			"updatedAt": client.UpdatedAt,
		},
	})
}
