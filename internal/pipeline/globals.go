package pipeline

const (
	FieldURL                = "url"
	FieldCredential         = "api_key"
	FieldLength             = "length"
	FieldTranscriptionModel = "whisper_model"

	logPreviewLength = 50
)
