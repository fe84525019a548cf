package analyzer

import "fmt"

// NewDetector creates a detector based on the specified variant. "none"
// yields a nil detector and no error.
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "sobel", "":
		return NewSobelDetector(), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}
