package flow_test

import (
	"fmt"

	"github.com/matzehuels/agentflow/pkg/flow"
)

func ExampleTopologicalSort() {
	g := flow.New()
	for _, id := range []string{"start", "draft", "review", "done"} {
		_ = g.AddNode(flow.NewNode(id))
	}
	_ = g.AddEdge(flow.Edge{From: "start", To: "draft"})
	_ = g.AddEdge(flow.Edge{From: "draft", To: "review"})
	_ = g.AddEdge(flow.Edge{From: "review", To: "done", Condition: "approved"})
	_ = g.AddEdge(flow.Edge{From: "review", To: "draft"})
	_ = g.SetEntryPoints("start", []string{"done"})

	order := flow.TopologicalSort(g)
	fmt.Println("Order:", order)
	for _, e := range flow.LoopRisks(g, order) {
		fmt.Printf("Loop risk: %s -> %s\n", e.From, e.To)
	}
	// Output:
	// Order: [start draft review done]
	// Loop risk: review -> draft
}

func ExampleDiagnose() {
	g := flow.New()
	_ = g.AddNode(flow.NewNode("a"))
	_ = g.AddNode(flow.NewNode("b"))

	for _, d := range flow.Diagnose(g) {
		fmt.Println(d.Code)
	}
	// Output:
	// missing-start
	// missing-terminals
	// disconnected-node
	// disconnected-node
}
