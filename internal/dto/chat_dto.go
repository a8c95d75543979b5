package dto

type ChatRequest struct {
	ConversationId string `json:"conversation_id" validate:"required"`
	Message        string `json:"message" validate:"required,min=1,max=2000"`
}

type ChatResponse struct {
	Reply          string `json:"reply"`
	ConversationId string `json:"conversation_id"`
	State          string `json:"state"`
	// DocumentNumber is set when the turn ended up creating or touching a
	// document.
	DocumentNumber string `json:"document_number,omitempty"`
}
