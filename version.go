package bpmngen

// Version is the release of this module. Overridden at build time with
// -ldflags "-X github.com/aretw0/bpmngen.Version=...".
var Version = "0.1.0"
