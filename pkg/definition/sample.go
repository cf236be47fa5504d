package definition

import _ "embed"

// Sample is a small order-processing definition used as a starting point by new projects.
//
//go:embed sample.yaml
var Sample []byte
