package tc

// QualityRatios holds the unique/set/rare/magic weights a treasure class
// contributes to the quality roll of the items it drops. Values are out of 1024.
type QualityRatios struct {
	Unique int `json:"unique" yaml:"unique"`
	Set    int `json:"set" yaml:"set"`
	Rare   int `json:"rare" yaml:"rare"`
	Magic  int `json:"magic" yaml:"magic"`
}

// Merge returns the elementwise max of a and b. The zero value is the identity.
func Merge(a, b QualityRatios) QualityRatios {
	return QualityRatios{
		Unique: max(a.Unique, b.Unique),
		Set:    max(a.Set, b.Set),
		Rare:   max(a.Rare, b.Rare),
		Magic:  max(a.Magic, b.Magic),
	}
}

// IsZero reports whether no ratio is set.
func (q QualityRatios) IsZero() bool {
	return q == QualityRatios{}
}
