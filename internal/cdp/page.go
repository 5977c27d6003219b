package cdp

import "encoding/json"

// Methods and events used by the conversion flow. These names are fixed by
// the protocol version Chrome ships; the three operations they implement
// (navigate, observe status, render to PDF) are the stable contract.
const (
	MethodPageEnable      = "Page.enable"
	MethodPageNavigate    = "Page.navigate"
	MethodPagePrintToPDF  = "Page.printToPDF"
	MethodRuntimeEvaluate = "Runtime.evaluate"

	EventLoadFired = "Page.loadEventFired"
)

// NavigateParams are the arguments to Page.navigate.
type NavigateParams struct {
	URL string `json:"url"`
}

// NavigateReply is the response to Page.navigate. ErrorText is set when
// navigation failed at the network layer (e.g. net::ERR_NAME_NOT_RESOLVED).
type NavigateReply struct {
	FrameID   string `json:"frameId"`
	LoaderID  string `json:"loaderId,omitempty"`
	ErrorText string `json:"errorText,omitempty"`
}

// PrintToPDFParams are the arguments to Page.printToPDF. All dimensions are
// in inches. Margins are always sent explicitly, including zero; omitting
// them would fall back to Chrome's 1cm default.
type PrintToPDFParams struct {
	Landscape               bool    `json:"landscape"`
	DisplayHeaderFooter     bool    `json:"displayHeaderFooter"`
	PrintBackground         bool    `json:"printBackground"`
	Scale                   float64 `json:"scale,omitempty"`
	PaperWidth              float64 `json:"paperWidth"`
	PaperHeight             float64 `json:"paperHeight"`
	MarginTop               float64 `json:"marginTop"`
	MarginBottom            float64 `json:"marginBottom"`
	MarginLeft              float64 `json:"marginLeft"`
	MarginRight             float64 `json:"marginRight"`
	PageRanges              string  `json:"pageRanges,omitempty"`
	IgnoreInvalidPageRanges bool    `json:"ignoreInvalidPageRanges,omitempty"`
}

// PrintToPDFReply carries the rendered document, base64-encoded.
type PrintToPDFReply struct {
	Data string `json:"data"`
}

// EvaluateParams are the arguments to Runtime.evaluate.
type EvaluateParams struct {
	Expression    string `json:"expression"`
	ReturnByValue bool   `json:"returnByValue,omitempty"`
}

// EvaluateReply is the response to Runtime.evaluate.
type EvaluateReply struct {
	Result RemoteObject `json:"result"`
}

// RemoteObject is the mirror of a JavaScript value in an evaluate reply.
type RemoteObject struct {
	Type        string          `json:"type"`
	Value       json.RawMessage `json:"value,omitempty"`
	Description string          `json:"description,omitempty"`
}
