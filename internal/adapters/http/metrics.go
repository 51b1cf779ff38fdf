package http

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// promMeta describes how one expvar variable renders in Prometheus text
// exposition format.
type promMeta struct {
	typ   string
	help  string
	label string // non-empty for expvar.Map variables
}

var promMetas = map[string]promMeta{
	"patchbay_eval_nodes_total":    {typ: "counter", help: "Node evaluations", label: "type"},
	"patchbay_eval_failures_total": {typ: "counter", help: "Node evaluations that errored or panicked", label: "type"},
	"patchbay_eval_passes_total":   {typ: "counter", help: "Top-level propagation passes"},
	"patchbay_nodes_created_total": {typ: "counter", help: "Nodes instantiated", label: "type"},
	"patchbay_nodes_removed_total": {typ: "counter", help: "Nodes removed"},
	"patchbay_connects_total":      {typ: "counter", help: "Edges created"},
	"patchbay_disconnects_total":   {typ: "counter", help: "Edges removed"},
	"patchbay_drags_total":         {typ: "counter", help: "Wire drags finished", label: "outcome"},
	"patchbay_snapshot_ops_total":  {typ: "counter", help: "Snapshot operations", label: "op"},
	"patchbay_graph_nodes":         {typ: "gauge", help: "Live nodes in the patch"},
	"patchbay_graph_edges":         {typ: "gauge", help: "Live edges in the patch"},
}

// promMetricsHandler renders expvar-published metrics in Prometheus text
// exposition format. Known patchbay metrics get HELP/TYPE headers and map
// keys become labels; other integer expvars render as untyped gauges.
func promMetricsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	names := make([]string, 0, 32)
	expvar.Do(func(kv expvar.KeyValue) {
		names = append(names, kv.Key)
	})
	sort.Strings(names)

	for _, name := range names {
		v := expvar.Get(name)
		meta, known := promMetas[name]
		if !known {
			if iv, ok := v.(*expvar.Int); ok {
				fmt.Fprintf(w, "# TYPE %s gauge\n%s %s\n", name, name, iv.String())
			}
			continue
		}

		fmt.Fprintf(w, "# HELP %s %s\n", name, meta.help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, meta.typ)

		if meta.label == "" {
			fmt.Fprintf(w, "%s %s\n", name, v.String())
			continue
		}
		mp, ok := v.(*expvar.Map)
		if !ok {
			continue
		}
		var sub []expvar.KeyValue
		mp.Do(func(kv expvar.KeyValue) { sub = append(sub, kv) })
		sort.Slice(sub, func(i, j int) bool { return sub[i].Key < sub[j].Key })
		for _, kv := range sub {
			fmt.Fprintf(w, "%s{%s=\"%s\"} %s\n", name, meta.label, escapeLabel(kv.Key), kv.Value.String())
		}
	}
}

// escapeLabel escapes backslash, double-quote, and newline per the
// Prometheus text format.
func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
