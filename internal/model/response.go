package model

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Details  string            `json:"details,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect string            `json:"redirect,omitempty"`
}

type Meta struct {
	Total     int  `json:"total"`
	Searching bool `json:"searching"`
	Loading   bool `json:"loading"`
}
