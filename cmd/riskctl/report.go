package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bibbank/creditrisk/internal/application/dto"
	"github.com/bibbank/creditrisk/internal/domain/model"
)

var profilePrompts = []struct {
	field string
	label string
}{
	{model.FieldIncome, "Annual Income ($): "},
	{model.FieldTotalDebt, "Total Debt Outstanding ($): "},
	{model.FieldFICOScore, "FICO Score (300-850): "},
	{model.FieldCreditLines, "Number of Credit Lines: "},
	{model.FieldLoanAmount, "Current Loan Amount ($): "},
	{model.FieldYearsEmployed, "Years of Employment: "},
}

// errNotNumeric marks an answer that does not parse as a number.
var errNotNumeric = errors.New("not a number")

// readProfile prompts for every profile field. It returns io.EOF when input
// ends before a profile is complete, an errNotNumeric error for a bad answer,
// and any other read error unchanged.
func readProfile(in *bufio.Scanner, out io.Writer) (map[string]float64, error) {
	fmt.Fprintln(out, "\n--- Credit Risk Assessment Profile ---")
	profile := make(map[string]float64, len(profilePrompts))
	for _, p := range profilePrompts {
		answer, err := prompt(in, out, p.label)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w: %v", p.field, errNotNumeric, err)
		}
		profile[p.field] = v
	}
	return profile, nil
}

func prompt(in *bufio.Scanner, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(in.Text()), nil
}

func writeReport(out io.Writer, r dto.ScoreResponse) {
	rule := strings.Repeat("=", 40)
	fmt.Fprintln(out)
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, "         RISK ASSESSMENT REPORT         ")
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "Risk Classification:    %s\n", strings.ToUpper(r.RiskLevel))
	fmt.Fprintf(out, "Prob. of Default:       %.2f%%\n", r.ProbabilityOfDefault*100)
	fmt.Fprintf(out, "Expected Loss (EL):     $%s\n", formatMoney(decimal.NewFromFloat(r.ExpectedLoss)))
	fmt.Fprintln(out, rule)
}

// formatMoney renders d with two decimals and thousands separators.
func formatMoney(d decimal.Decimal) string {
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if d.IsNegative() {
		b.WriteByte('-')
	}
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
