package entity

import "time"

// Actor identifica al usuario que ejecuta una operación del motor. Se pasa
// explícitamente en cada llamada; el motor nunca lee identidad de estado global.
type Actor struct {
	UserID      string
	RequestTime time.Time
}

// NewActor construye el actor con la hora actual si requestTime es cero.
func NewActor(userID string, requestTime time.Time) Actor {
	if requestTime.IsZero() {
		requestTime = time.Now()
	}
	return Actor{UserID: userID, RequestTime: requestTime}
}
