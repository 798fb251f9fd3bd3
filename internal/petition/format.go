package petition

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const ruleWidth = 70

var (
	heavyRule = strings.Repeat("=", ruleWidth)
	lightRule = strings.Repeat("-", ruleWidth)
)

// numbers renders figures the way the petition prints them: whole currency
// units with thousands separators, one-decimal percentages and three-decimal
// cost factors.
type numbers struct {
	p *message.Printer
}

func newNumbers() numbers {
	return numbers{p: message.NewPrinter(language.English)}
}

// grouped rounds v to a whole unit and adds thousands separators.
func (n numbers) grouped(v float64) string {
	return n.p.Sprintf("%d", int64(math.RoundToEven(v)))
}

// money renders "$242,732".
func (n numbers) money(v float64) string {
	return "$" + n.grouped(v)
}

// signed renders "+15,000" or "-15,000".
func (n numbers) signed(v float64) string {
	r := math.RoundToEven(v)
	if r < 0 {
		return "-" + n.grouped(-r)
	}
	return "+" + n.grouped(r)
}

// signedMoney renders "$+15,000" or "$-15,000".
func (n numbers) signedMoney(v float64) string {
	return "$" + n.signed(v)
}

// count renders an integer with thousands separators.
func (n numbers) count(v int) string {
	return n.p.Sprintf("%d", v)
}

func pct(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func signedPct(v float64) string {
	return fmt.Sprintf("%+.1f", v)
}

func ratio(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// lines accumulates one section of the petition.
type lines []string

func (l *lines) add(s string) {
	*l = append(*l, s)
}

func (l *lines) addf(format string, args ...interface{}) {
	*l = append(*l, fmt.Sprintf(format, args...))
}

func (l *lines) blank() {
	*l = append(*l, "")
}

func (l *lines) banner(rule, title string) {
	*l = append(*l, rule, title, rule)
}
