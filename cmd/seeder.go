package cmd

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		gdb, err := initGorm(db)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			// FK order: leaves first.
			for _, table := range []string{"notifications", "ticket_responses", "tickets", "maintenance_schedules", "equipment_logs", "equipment", "users", "suppliers", "locations", "departments"} {
				if err := gdb.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		departments := []struct {
			Name string
			Code string
		}{
			{"Intensive Care Unit", "ICU"},
			{"Radiology", "RAD"},
			{"Emergency", "ER"},
		}
		departmentIDs := map[string]string{}
		for _, d := range departments {
			var id string
			row := gdb.Raw("SELECT id FROM departments WHERE name = ?", d.Name).Row()
			if err := row.Scan(&id); err == nil {
				fmt.Printf("department %s already exists\n", d.Name)
				departmentIDs[d.Code] = id
				continue
			}
			id = uuid.NewString()
			if err := gdb.Exec("INSERT INTO departments (id, name, code, created_at, updated_at) VALUES (?, ?, ?, now(), now())", id, d.Name, d.Code).Error; err != nil {
				log.Fatalf("failed to insert department %s: %v", d.Name, err)
			}
			departmentIDs[d.Code] = id
			fmt.Println("Seeded department:", d.Name)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		users := []struct {
			Email      string
			FullName   string
			Role       string
			Department string
		}{
			{"admin@hospital.test", "System Administrator", "super_admin", ""},
			{"manager@hospital.test", "Biomed Manager", "manager", ""},
			{"head.icu@hospital.test", "ICU Head", "department_head", "ICU"},
			{"tech@hospital.test", "Biomed Technician", "support", ""},
			{"nurse.icu@hospital.test", "ICU Nurse Incharge", "department_incharge", "ICU"},
		}
		for _, u := range users {
			var exists int
			row := gdb.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
			if err := row.Scan(&exists); err == nil {
				fmt.Printf("user %s already exists\n", u.Email)
				continue
			}

			var departmentID interface{}
			if u.Department != "" {
				departmentID = departmentIDs[u.Department]
			}
			err := gdb.Exec(
				"INSERT INTO users (id, email, full_name, role, department_id, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, true, now(), now())",
				uuid.NewString(), u.Email, u.FullName, u.Role, departmentID, string(hash),
			).Error
			if err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Email, err)
			}
			fmt.Println("Seeded user:", u.Email)
		}

		fmt.Println("Seeding complete. Default password for all users:", password)
	},
}
