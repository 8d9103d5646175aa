package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/karyawan-management/internal/auth"
	jabatanDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/jabatan"
	kantorDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/kantor"
	userDatamodel "github.com/frahmantamala/karyawan-management/internal/core/datamodel/user"
	"github.com/frahmantamala/karyawan-management/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, rdb, err := openDatabase(cfg.Database, logger.LoggerWrapper())
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer rdb.Close()

		if clearData {
			if err := db.Exec("TRUNCATE TABLE karyawan, jabatan, kantor, users RESTART IDENTITY CASCADE").Error; err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared karyawan, jabatan, kantor and users")
		}

		if err := seed(db, auth.NewPasswordService(cfg.Security.BCryptCost)); err != nil {
			log.Fatalf("failed to seed: %v", err)
		}
		fmt.Println("Seed data is in place")
	},
}

func seed(db *gorm.DB, passwords *auth.PasswordService) error {
	hash, err := passwords.Hash("password123")
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	fullName := "Test User"
	testUser := userDatamodel.User{
		Username:     "testuser",
		Email:        "testuser@example.com",
		PasswordHash: hash,
		FullName:     &fullName,
		IsActive:     true,
	}
	if err := db.Where(userDatamodel.User{Username: testUser.Username}).FirstOrCreate(&testUser).Error; err != nil {
		return fmt.Errorf("seed user %s: %w", testUser.Username, err)
	}
	fmt.Println("Seeded user:", testUser.Username)

	deskripsi := "Staf umum"
	staff := jabatanDatamodel.Jabatan{
		NamaJabatan: "Staff",
		Deskripsi:   &deskripsi,
		CreatedBy:   &testUser.ID,
		UpdatedBy:   &testUser.ID,
	}
	if err := db.Where(jabatanDatamodel.Jabatan{NamaJabatan: staff.NamaJabatan}).FirstOrCreate(&staff).Error; err != nil {
		return fmt.Errorf("seed jabatan %s: %w", staff.NamaJabatan, err)
	}
	fmt.Println("Seeded jabatan:", staff.NamaJabatan)

	kantors := []kantorDatamodel.Kantor{
		{Nama: "Kantor Pusat Jakarta", Alamat: "Jl. Sudirman No. 1, Jakarta Pusat", Longitude: 106.8229, Latitude: -6.2088},
		{Nama: "Kantor Cabang Bandung", Alamat: "Jl. Asia Afrika No. 8, Bandung", Longitude: 107.6098, Latitude: -6.9175},
	}
	for i := range kantors {
		k := kantors[i]
		k.CreatedBy = &testUser.ID
		k.UpdatedBy = &testUser.ID
		if err := db.Where(kantorDatamodel.Kantor{Nama: k.Nama}).FirstOrCreate(&k).Error; err != nil {
			return fmt.Errorf("seed kantor %s: %w", k.Nama, err)
		}
		fmt.Println("Seeded kantor:", k.Nama)
	}

	return nil
}
