package domain

// KeyPrefix namespaces every key this service writes to the shared cache.
const KeyPrefix = "anisearch:"

// DefaultTopK is the number of ranked results returned per query.
const DefaultTopK = 10

// ModelConfig describes a request-selectable encoder.
type ModelConfig struct {
	Name             string
	Provider         string
	Dimensions       int
	QueryInstruction string
}
