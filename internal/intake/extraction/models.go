// internal/intake/extraction/models.go
package extraction

// Status is the closed set of conversational states the model may answer
// with. Anything else is a parse failure, never a fourth state.
type Status string

const (
	StatusIncomplete Status = "INCOMPLETE"
	StatusCompleted  Status = "COMPLETED"
	StatusIgnore     Status = "IGNORE"
)

// TripData is the candidate trip record extracted from the conversation.
// AwaitReturn is deliberately a *bool: "the user never said" and "the user
// said no" are different answers, and the rules engine must see which one it
// got.
type TripData struct {
	RequesterName string   `json:"nome_solicitante"`
	Destination   string   `json:"destino"`
	DepartureISO  string   `json:"data_hora_iso"`
	Passengers    []string `json:"passageiros"`
	AwaitReturn   *bool    `json:"aguardar_retorno"`
	Proad         string   `json:"proad"`
	VehicleType   string   `json:"tipo_veiculo"`
}

// Result is one decoded model answer. Transient, one per invocation.
type Result struct {
	Reasoning string
	Status    Status
	Data      *TripData
	UserReply string
}
