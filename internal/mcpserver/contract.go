package mcpserver

import (
	"fmt"
	"strings"

	"github.com/mimahin/gmgbd/internal/catalog"
)

// DatasetCard renders a Markdown summary of the published dataset: its
// columns, gallery categories and citation. It is what an LLM consumer
// should read before querying the catalog tools.
func DatasetCard(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("# GMGBD Dataset Card\n\n")
	b.WriteString("Global Multimodal Geo-Biotic Dataset: research-grade wildlife observations ")
	b.WriteString("enriched with AI captions, reverse geocoding, climate, vegetation and hydrology layers.\n\n")

	b.WriteString("## Columns\n\n")
	b.WriteString("| Column | Type | Scope | Description |\n|---|---|---|---|\n")
	for _, f := range cat.DataFeatures() {
		fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", f.Column, f.Type, f.Badge, f.Description)
	}

	b.WriteString("\n## Gallery categories\n\n")
	for _, c := range cat.Categories() {
		fmt.Fprintf(&b, "- %s (%d)\n", c, len(cat.ByCategory(c)))
	}

	links := cat.Links()
	fmt.Fprintf(&b, "\n## Access\n\n- %s: %s\n- %s: %s\n", links.Dataset.Label, links.Dataset.URL, links.Repository.Label, links.Repository.URL)

	b.WriteString("\n## Citation\n\n```bibtex\n")
	b.WriteString(cat.Citation().BibTeX())
	b.WriteString("```\n")
	return b.String()
}
