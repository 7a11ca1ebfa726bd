package stream

import (
	"encoding/xml"
	"math"
	"testing"

	"mellium.im/xmlstream"
)

func TestMaxDepthErrorReader(t *testing.T) {
	r := errorReader{r: xmlstream.ReaderFunc(func() (xml.Token, error) {
		return xml.StartElement{Name: xml.Name{Local: "foo"}}, nil
	})}

	r.depth = math.MaxUint64
	_, err := r.Token()
	if err != errMaxNesting {
		t.Errorf("unexpected error: want=%v, got=%v", errMaxNesting, err)
	}
}
