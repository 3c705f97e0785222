package cars

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Price is entered as free text and may arrive as a JSON number or string.
type Price string

func (p *Price) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Price(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*p = Price(n.String())
	return nil
}

var brl = message.NewPrinter(language.BrazilianPortuguese)

// thousandsPattern matches integers grouped with dots, e.g. "69.000".
var thousandsPattern = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// BRL formats the price as Brazilian reais, e.g. "R$ 45.000,00".
// Values that are not numeric are returned unchanged.
func (p Price) BRL() string {
	v, ok := p.value()
	if !ok {
		return string(p)
	}
	return brl.Sprintf("R$ %.2f", v)
}

// value parses plain numbers and pt-BR formatted ones ("45.000,50", "69.000").
func (p Price) value() (float64, bool) {
	s := strings.TrimSpace(string(p))
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	switch {
	case strings.Contains(s, ","):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case thousandsPattern.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
