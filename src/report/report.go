// Package report renders sales, portfolio and loan summaries for the terminal.
package report

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/username/homedash/backend/src/models"
	"github.com/username/homedash/backend/src/processors"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")).Padding(0, 1)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

	rendererMu sync.Mutex
	renderers  = map[int]*glamour.TermRenderer{}
)

// SalesMarkdown lists every sale newest first, followed by the totals.
func SalesMarkdown(items []models.SalesItem, stats models.SalesStats, currency string) string {
	var b strings.Builder
	b.WriteString("## Sales\n\n")
	if len(items) == 0 {
		b.WriteString("No sales recorded.\n")
		return b.String()
	}

	sorted := append([]models.SalesItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].SaleDate > sorted[j].SaleDate })

	b.WriteString("| Date | Item | Platform | Sold for | Price |\n")
	b.WriteString("|---|---|---|---|---:|\n")
	for _, it := range sorted {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			it.SaleDate, cell(it.ItemName), cell(it.SalePlatform), it.SoldFor,
			processors.FormatMoneyFloat(it.SalePrice, currency))
	}

	fmt.Fprintf(&b, "\n**Total:** %s across %d items\n", processors.FormatMoneyFloat(stats.TotalSales, currency), stats.TotalItems)
	months := make([]string, 0, len(stats.MonthlySales))
	for m := range stats.MonthlySales {
		months = append(months, m)
	}
	sort.Strings(months)
	if len(months) > 0 {
		b.WriteString("\n### By month\n\n")
		for _, m := range months {
			fmt.Fprintf(&b, "- %s: %s\n", m, processors.FormatMoneyFloat(stats.MonthlySales[m], currency))
		}
	}
	return b.String()
}

// PortfolioMarkdown renders a valuation as one row per holding plus totals.
func PortfolioMarkdown(v models.PortfolioValuation) string {
	var b strings.Builder
	b.WriteString("## Portfolio\n\n")
	if len(v.Holdings) == 0 {
		b.WriteString("No holdings.\n")
		return b.String()
	}

	b.WriteString("| Symbol | Shares | Price | Value | P/L | Source |\n")
	b.WriteString("|---|---:|---:|---:|---:|---|\n")
	for _, h := range v.Holdings {
		price := "n/a"
		if !h.PriceUnavailable {
			price = processors.FormatMoneyFloat(h.CurrentPrice, h.PriceCurrency)
		}
		pl := "n/a"
		if !h.CostBasisMissing && !h.PriceUnavailable {
			pl = fmt.Sprintf("%s (%.2f%%)", h.ProfitLossFormatted, h.ProfitLossPercent)
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %s | %s | %s |\n",
			h.Symbol, h.Shares, price, h.MarketValueFormatted, pl, h.PriceSource)
	}

	fmt.Fprintf(&b, "\n**Total value:** %s\n", v.TotalFormatted)
	fmt.Fprintf(&b, "\n**Profit/loss:** %s (%.2f%%)\n",
		processors.FormatMoneyFloat(v.TotalProfitLoss, v.ReportingCurrency), v.TotalProfitLossPercent)
	if len(v.UnpricedSymbols) > 0 {
		fmt.Fprintf(&b, "\nNo price for: %s\n", strings.Join(v.UnpricedSymbols, ", "))
	}
	return b.String()
}

// LoanMarkdown renders a loan summary with its payment rows.
func LoanMarkdown(s models.LoanSummary, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", cell(s.Loan.Name))
	fmt.Fprintf(&b, "- Loan amount: %s\n", processors.FormatMoneyFloat(s.Loan.LoanAmount, currency))
	fmt.Fprintf(&b, "- Remaining: %s\n", processors.FormatMoneyFloat(s.Loan.RemainingAmount, currency))
	fmt.Fprintf(&b, "- Months: %d of %d paid\n", s.Loan.PaidMonths, s.Loan.TotalMonths)
	fmt.Fprintf(&b, "- Progress: %.2f%%\n", s.ProgressPercent)

	if len(s.Rows) == 0 {
		b.WriteString("\nNo payments recorded.\n")
		return b.String()
	}

	b.WriteString("\n| Month | Amount | Interest | Principal | Balance |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, r := range s.Rows {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", r.Month,
			processors.FormatMoneyFloat(r.Amount, currency),
			processors.FormatMoneyFloat(r.Interest, currency),
			processors.FormatMoneyFloat(r.Principal, currency),
			processors.FormatMoneyFloat(r.RemainingBalance, currency))
	}
	fmt.Fprintf(&b, "\n**Paid:** %s, of which interest %s\n",
		processors.FormatMoneyFloat(s.TotalPaid, currency),
		processors.FormatMoneyFloat(s.TotalInterest, currency))
	if s.BalanceIncreases {
		b.WriteString("\nWarning: the recorded balance rises between payments.\n")
	}
	return b.String()
}

// Render prints a styled title above the markdown body rendered for a
// terminal of the given width. The raw markdown is used if glamour fails.
func Render(title, markdown string, width int) string {
	if width < 20 {
		width = 20
	}
	body := strings.TrimRight(markdown, "\n")
	if r := termRenderer(width); r != nil {
		if out, err := r.Render(markdown); err == nil {
			body = strings.TrimRight(out, "\n")
		}
	}
	return titleStyle.Render(title) + "\n" + body + "\n"
}

// Muted dims secondary text such as footers.
func Muted(s string) string {
	return mutedStyle.Render(s)
}

func termRenderer(width int) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}

// cell keeps user text from breaking a markdown table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	return strings.ReplaceAll(s, "\n", " ")
}
