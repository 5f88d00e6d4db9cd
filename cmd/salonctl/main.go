package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/groomer-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/groomer-scheduler/internal/db"
	infraRepo "github.com/BruksfildServices01/groomer-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/groomer-scheduler/internal/logger"
	"github.com/BruksfildServices01/groomer-scheduler/internal/models"
	ucAppointment "github.com/BruksfildServices01/groomer-scheduler/internal/usecase/appointment"
	"github.com/BruksfildServices01/groomer-scheduler/internal/usecase/usage"
	"github.com/BruksfildServices01/groomer-scheduler/internal/validators"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Env, cfg.LogLevel)

	rootCmd := &cobra.Command{
		Use:   "salonctl",
		Short: "Groomer scheduler maintenance tool",
	}

	rootCmd.AddCommand(
		migrateCmd(cfg),
		overdueCmd(cfg),
		usageCmd(cfg),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		RunE: func(cmd *cobra.Command, args []string) error {
			db := dbpkg.NewDB(cfg)
			if err := dbpkg.Migrate(db, cfg.DefaultTimezone); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func overdueCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overdue",
		Short: "List pets in the salon longer than the overdue threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, _ := cmd.Flags().GetString("salon")
			hours, _ := cmd.Flags().GetInt("hours")

			db := dbpkg.NewDB(cfg)
			salon, err := salonBySlug(db, slug)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			uc := ucAppointment.NewListOverdue(infraRepo.NewAppointmentGormRepository(db), hours)
			list, err := uc.Execute(ctx, salon.ID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PET\tCLIENT\tPHONE\tKENNEL\tSTATUS\tHOURS")
			for _, o := range list {
				kennel := "-"
				if o.KennelNumber != nil {
					kennel = *o.KennelNumber
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1f\n",
					o.PetName, o.ClientName, o.ClientPhone, kennel, o.Status, o.HoursInSalon)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("salon", "", "salon slug")
	cmd.Flags().Int("hours", cfg.OverdueHours, "hours after check-in before a pet is overdue")
	_ = cmd.MarkFlagRequired("salon")

	return cmd
}

func usageCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show this month's plan usage of a salon",
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, _ := cmd.Flags().GetString("salon")

			db := dbpkg.NewDB(cfg)
			salon, err := salonBySlug(db, slug)
			if err != nil {
				return err
			}

			report, err := usage.NewCheckUsage(db, nil).Report(cmd.Context(), salon.ID)
			if err != nil {
				return err
			}

			fmt.Printf("plan: %s\n", report.PlanName)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RESOURCE\tUSED\tLIMIT")
			for _, r := range []usage.Resource{usage.ResourceClients, usage.ResourcePets, usage.ResourceAppointments} {
				limit := fmt.Sprint(report.Limits.For(r))
				if report.Limits.For(r) == usage.Unlimited {
					limit = "unlimited"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", r, report.Usage.For(r), limit)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("salon", "", "salon slug")
	_ = cmd.MarkFlagRequired("salon")

	return cmd
}

func salonBySlug(db *gorm.DB, slug string) (*models.Salon, error) {
	var salon models.Salon
	if err := db.Where("slug = ?", validators.NormalizeSlug(slug)).First(&salon).Error; err != nil {
		return nil, fmt.Errorf("salon %q: %w", slug, err)
	}
	return &salon, nil
}
