package catalog

import (
	"github.com/abadojack/whatlanggo"
)

// Detector labels a text with a catalog language.
type Detector interface {
	Detect(text string) Language
}

type scriptDetector struct {
	opts whatlanggo.Options
}

// NewDetector returns a Detector restricted to English and Russian. Text
// with no recognisable script is labelled unknown.
func NewDetector() Detector {
	return &scriptDetector{
		opts: whatlanggo.Options{
			Whitelist: map[whatlanggo.Lang]bool{
				whatlanggo.Eng: true,
				whatlanggo.Rus: true,
			},
		},
	}
}

func (d *scriptDetector) Detect(text string) Language {
	info := whatlanggo.DetectWithOptions(text, d.opts)
	if info.Script == nil {
		return LangUnknown
	}
	switch info.Lang {
	case whatlanggo.Eng:
		return LangEnglish
	case whatlanggo.Rus:
		return LangRussian
	default:
		return LangUnknown
	}
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(text string) Language

func (f DetectorFunc) Detect(text string) Language { return f(text) }
