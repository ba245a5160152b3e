package types

// LocationReportRequest is one answer from the device geolocation sensor. Seq
// must grow with every sensor request the client starts so late answers can be
// discarded.
type LocationReportRequest struct {
	Seq       uint64              `json:"seq" binding:"required,min=1"`
	Latitude  *float64            `json:"latitude"`
	Longitude *float64            `json:"longitude"`
	Accuracy  float64             `json:"accuracy" binding:"min=0"`
	Error     *SensorErrorPayload `json:"error"`
}

type SensorErrorPayload struct {
	Code    string `json:"code" binding:"required,oneof=permission_denied unavailable timeout unsupported"`
	Message string `json:"message"`
}

// SensorOptions mirrors the options passed to navigator.geolocation.
type SensorOptions struct {
	EnableHighAccuracy bool  `json:"enableHighAccuracy"`
	TimeoutMs          int64 `json:"timeout"`
	MaximumAgeMs       int64 `json:"maximumAge"`
}

type ClientConfig struct {
	Sensor            SensorOptions `json:"sensor"`
	MinDistanceMeters float64       `json:"minDistanceMeters"`
	MaxFileBytes      int64         `json:"maxFileBytes"`
	MaxFiles          int           `json:"maxFiles"`
	AllowedExtensions []string      `json:"allowedExtensions"`
}
