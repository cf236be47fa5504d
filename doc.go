/*
Package bpmngen turns structured YAML workflow definitions into BPMN 2.0 diagrams.

A definition lists pools, their lanes, the elements inside each lane and the
flows between elements. bpmngen validates it locally, sends it to an external
compilation service (POST /generate-bpmn) and previews the returned BPMN XML
in a disposable render sandbox. The last successful result can be exported
byte-for-byte as diagram.bpmn.

# Flow

	Validate -> Orchestrator (single flight, stale-response guard) -> Sandbox -> Export

Only one compilation is in flight at a time; a second Generate returns
domain.ErrBusy. Every request carries a monotonic token and a response whose
token is no longer the latest is discarded, so an abandoned slow request can
never overwrite a newer diagram.

# Usage

	studio, err := bpmngen.New("http://localhost:8000",
		bpmngen.WithRealmFactory(document.Factory(nil, document.WithOutputFile("preview.html"))),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer studio.Close()

	res, err := studio.Generate(ctx, raw)
	if err != nil {
		log.Fatal(err)
	}
	if res.RenderErr != nil {
		log.Printf("preview: %v", res.RenderErr)
	}

	if _, err := studio.ExportTo(ctx, &export.FileSink{Dir: "."}); err != nil {
		log.Fatal(err)
	}
*/
package bpmngen
