package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/username/homedash/backend/src/config"
	"github.com/username/homedash/backend/src/database"
	"github.com/username/homedash/backend/src/model"
	"github.com/username/homedash/backend/src/processors"
	"github.com/username/homedash/backend/src/report"
	"github.com/username/homedash/backend/src/security/validation"
	"github.com/username/homedash/backend/src/services"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.InitDB(config.Cfg.DatabasePath)
		if err != nil {
			return err
		}
		return db.Close()
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage accounts",
}

var userCreateFlags struct {
	email    string
	password string
	role     string
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := validation.ValidateEmail(userCreateFlags.email)
		if err != nil {
			return err
		}
		if err := validation.ValidatePassword(userCreateFlags.password); err != nil {
			return err
		}

		db, err := database.InitDB(config.Cfg.DatabasePath)
		if err != nil {
			return err
		}
		defer db.Close()

		if _, err := model.GetUserByEmail(db, email); err == nil {
			return fmt.Errorf("user %s already exists", email)
		} else if !errors.Is(err, model.ErrNotFound) {
			return err
		}

		user := &model.User{Email: email, Role: userCreateFlags.role}
		if err := user.HashPassword(userCreateFlags.password); err != nil {
			return err
		}
		if err := user.CreateUser(db); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (id %d)\n", user.Role, user.Email, user.ID)
		return nil
	},
}

var reportFlags struct {
	user  string
	loan  int64
	raw   bool
	width int
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print a summary of a user's data",
}

var reportSalesCmd = &cobra.Command{
	Use:   "sales",
	Short: "Sales overview",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withReportUser(func(user *model.User) (string, string, error) {
			items, err := model.ListSalesItems(database.DB, user.ID)
			if err != nil {
				return "", "", err
			}
			stats := processors.NewSalesProcessor().Aggregate(items)
			return "Sales", report.SalesMarkdown(items, stats, config.Cfg.ReportingCurrency), nil
		}, cmd)
	},
}

var reportPortfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio valuation at current prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withReportUser(func(user *model.User) (string, string, error) {
			holdings, err := model.ListStockHoldings(database.DB, user.ID)
			if err != nil {
				return "", "", err
			}
			portfolio := services.NewPortfolioService(
				services.NewPriceServiceFromConfig(config.Cfg),
				services.NewExchangeRateServiceFromConfig(config.Cfg),
				config.Cfg.ReportingCurrency,
			)
			return "Portfolio", report.PortfolioMarkdown(portfolio.Value(cmd.Context(), holdings)), nil
		}, cmd)
	},
}

var reportLoanCmd = &cobra.Command{
	Use:   "loan",
	Short: "Repayment summary of one car loan",
	RunE: func(cmd *cobra.Command, args []string) error {
		if reportFlags.loan <= 0 {
			return errors.New("--loan is required")
		}
		return withReportUser(func(user *model.User) (string, string, error) {
			loan, err := model.GetCarLoan(database.DB, user.ID, reportFlags.loan)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					return "", "", fmt.Errorf("car loan %d not found for %s", reportFlags.loan, user.Email)
				}
				return "", "", err
			}
			payments, err := model.ListLoanPayments(database.DB, user.ID, loan.ID)
			if err != nil {
				return "", "", err
			}
			summary := processors.NewLoanProcessor().Summarize(*loan, payments)
			return "Car loan", report.LoanMarkdown(summary, config.Cfg.ReportingCurrency), nil
		}, cmd)
	},
}

// withReportUser opens the database, resolves --user and prints what build returns.
func withReportUser(build func(user *model.User) (title, markdown string, err error), cmd *cobra.Command) error {
	if reportFlags.user == "" {
		return errors.New("--user is required")
	}
	db, err := database.InitDB(config.Cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	user, err := model.GetUserByEmail(db, reportFlags.user)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fmt.Errorf("no user %s", reportFlags.user)
		}
		return err
	}

	title, markdown, err := build(user)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if reportFlags.raw {
		fmt.Fprint(out, markdown)
		return nil
	}
	fmt.Fprint(out, report.Render(title, markdown, reportFlags.width))
	fmt.Fprintln(out, report.Muted("user "+user.Email))
	return nil
}

func init() {
	userCreateCmd.Flags().StringVar(&userCreateFlags.email, "email", "", "account email")
	userCreateCmd.Flags().StringVar(&userCreateFlags.password, "password", "", "initial password")
	userCreateCmd.Flags().StringVar(&userCreateFlags.role, "role", model.RoleUser, "user or admin")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	userCmd.AddCommand(userCreateCmd)

	reportCmd.PersistentFlags().StringVar(&reportFlags.user, "user", "", "email of the user to report on")
	reportCmd.PersistentFlags().BoolVar(&reportFlags.raw, "raw", false, "print markdown without terminal styling")
	reportCmd.PersistentFlags().IntVar(&reportFlags.width, "width", 100, "wrap width")
	reportLoanCmd.Flags().Int64Var(&reportFlags.loan, "loan", 0, "car loan id")
	reportCmd.AddCommand(reportSalesCmd, reportPortfolioCmd, reportLoanCmd)
}
