package usecase

// Translator renders message keys; implemented by i18n.Translator.
type Translator interface {
	T(key string, args ...any) string
}

// DisplayTime is the timestamp layout used in chat replies and admin alerts.
const DisplayTime = "2006-01-02 15:04:05"
