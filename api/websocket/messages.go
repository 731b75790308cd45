package websocket

import (
	"encoding/json"
	"time"

	"github.com/havenhealth/ops-engine/pkg/models"
)

type MessageType string

const (
	MessageTypePrediction MessageType = "prediction"
	MessageTypeAlert      MessageType = "alert"
	MessageTypeSnapshot   MessageType = "snapshot"
	MessageTypeExecution  MessageType = "execution"
)

type OutgoingMessage struct {
	Type      MessageType `json:"type"`
	Resource  string      `json:"resource,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewMessage(msgType MessageType, resource string, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      msgType,
		Resource:  resource,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}

type PredictionData struct {
	ResourceType      string  `json:"resource_type"`
	CurrentValue      float64 `json:"current_value"`
	Trend             string  `json:"trend"`
	RiskLevel         string  `json:"risk_level"`
	OptimizationScore int     `json:"optimization_score"`
}

type AlertData struct {
	AlertID  string `json:"alert_id"`
	Type     string `json:"alert_type"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
	Resolved bool   `json:"resolved"`
}

func BroadcastPrediction(hub *Hub, prediction models.ResourcePrediction) {
	data := PredictionData{
		ResourceType:      string(prediction.ResourceType),
		CurrentValue:      prediction.CurrentValue,
		Trend:             string(prediction.Trend),
		RiskLevel:         string(prediction.RiskLevel),
		OptimizationScore: prediction.OptimizationScore,
	}
	msg := NewMessage(MessageTypePrediction, string(prediction.ResourceType), data)
	hub.BroadcastToResource(string(prediction.ResourceType), msg.JSON())
}

func BroadcastAlert(hub *Hub, alert models.Alert) {
	data := AlertData{
		AlertID:  alert.ID,
		Type:     string(alert.Type),
		Category: string(alert.Category),
		Title:    alert.Title,
		Message:  alert.Message,
		Priority: alert.Priority,
		Resolved: alert.Resolved,
	}
	msg := NewMessage(MessageTypeAlert, string(alert.Category), data)
	hub.BroadcastToResource(string(alert.Category), msg.JSON())
}
