package model

// Extractor turns the content of one file into source units
type Extractor interface {
	// Extract parses the given file content and returns the units found in it
	Extract(filePath string, content []byte) ([]SourceUnit, error)
}

// Reporter defines how to output results
type Reporter interface {
	Report(results []UnitResult) error
}
