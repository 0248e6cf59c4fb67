package schema

// EnrichedRewriteRecord adds presentation data to a RewriteRecord.
type EnrichedRewriteRecord struct {
	Rank          int    `json:"rank" yaml:"rank"`
	Delta         int    `json:"delta" yaml:"delta"`
	Label         string `json:"label" yaml:"label"`
	RewriteRecord `yaml:",inline"`
}

// GetPlainLabel returns a plain text label for how much a rewrite grew a class.
func GetPlainLabel(delta int) string {
	switch {
	case delta < 0:
		return "Shrunk"
	case delta == 0:
		return "Same"
	case delta < 64:
		return "Small"
	default:
		return "Large"
	}
}

// EnrichRewrites adds rank, delta and label to a list of rewrite records.
func EnrichRewrites(records []RewriteRecord) []EnrichedRewriteRecord {
	output := make([]EnrichedRewriteRecord, len(records))
	for i, r := range records {
		delta := r.SizeAfter - r.SizeBefore
		output[i] = EnrichedRewriteRecord{
			Rank:          i + 1,
			Delta:         delta,
			Label:         GetPlainLabel(delta),
			RewriteRecord: r,
		}
	}
	return output
}

// InspectedClass describes the declared supertypes of one class in an archive.
type InspectedClass struct {
	EntryName    string   `json:"entry_name" yaml:"entry_name"`
	ClassName    string   `json:"class_name" yaml:"class_name"`
	SuperName    string   `json:"super_name" yaml:"super_name"`
	Interfaces   []string `json:"interfaces" yaml:"interfaces"`
	Signature    string   `json:"signature,omitempty" yaml:"signature,omitempty"`
	MajorVersion uint16   `json:"major_version" yaml:"major_version"`
	JavaVersion  int      `json:"java_version" yaml:"java_version"`
	InManifest   bool     `json:"in_manifest" yaml:"in_manifest"`
}
