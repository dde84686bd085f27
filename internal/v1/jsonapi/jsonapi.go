package jsonapi

// Request is the {"data":{"type":..,"attributes":..}} envelope accepted by
// the write endpoints.
type Request[T any, K comparable] struct {
	Data *Data[T, K] `json:"data"`
}

type Data[T any, K comparable] struct {
	Attributes *T `json:"attributes"`
	Type       K  `json:"type"`
}

type Response[T any, K comparable] struct {
	Data *Resource[T, K] `json:"data"`
}

type ListResponse[T any, K comparable] struct {
	Data []*Resource[T, K] `json:"data"`
}

type Resource[T any, K comparable] struct {
	Attributes *T     `json:"attributes,omitempty"`
	ID         string `json:"id"`
	Links      *Links `json:"links,omitempty"`
	Type       K      `json:"type"`
}

type Links struct {
	Self string `json:"self"`
}
