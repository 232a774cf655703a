package blink

// Link types
const (
	LinkTypeTransaction  = "transaction"
	LinkTypeExternalLink = "external-link"
	LinkTypePost         = "post"
)

// Parameter types
const (
	ParamTypeText     = "text"
	ParamTypeSelect   = "select"
	ParamTypeCheckbox = "checkbox"
)

// ActionGetResponse - metadata a wallet renders as a blink
type ActionGetResponse struct {
	Type        string       `json:"type"`
	Icon        string       `json:"icon"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Label       string       `json:"label"`
	Disabled    bool         `json:"disabled,omitempty"`
	Links       *ActionLinks `json:"links,omitempty"`
}

type ActionLinks struct {
	Actions []LinkedAction `json:"actions"`
}

// LinkedAction - one button of a blink
type LinkedAction struct {
	Type       string            `json:"type"`
	Href       string            `json:"href"`
	Label      string            `json:"label"`
	Parameters []ActionParameter `json:"parameters,omitempty"`
}

type ActionParameter struct {
	Name     string            `json:"name"`
	Label    string            `json:"label,omitempty"`
	Type     string            `json:"type,omitempty"`
	Required bool              `json:"required"`
	Options  []ParameterOption `json:"options,omitempty"`
}

type ParameterOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ActionPostResponse - an unsigned transaction for the wallet to sign
type ActionPostResponse struct {
	Type        string             `json:"type"`
	Transaction string             `json:"transaction"`
	Message     string             `json:"message,omitempty"`
	Links       *PostResponseLinks `json:"links,omitempty"`
}

type PostResponseLinks struct {
	Next NextActionLink `json:"next"`
}

// NextActionLink - follow-up endpoint the wallet POSTs to after confirming
type NextActionLink struct {
	Type string `json:"type"`
	Href string `json:"href"`
}

// ErrorResponse - body of every non-2xx action response
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// ActionsJSON - the discovery manifest served at /actions.json
type ActionsJSON struct {
	Rules []ActionRule `json:"rules"`
}

type ActionRule struct {
	PathPattern string `json:"pathPattern"`
	APIPath     string `json:"apiPath"`
}
