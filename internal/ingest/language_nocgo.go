//go:build !cgo

package ingest

const treeSitterAvailable = false

func extractCode(string) (any, error) {
	return nil, unavailable(CapCode)
}
