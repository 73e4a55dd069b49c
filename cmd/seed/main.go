// Package main provides a CLI tool for seeding the database with initial data.
// Records that already exist are left untouched.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"trackiq/internal/app"
	"trackiq/internal/config"
	"trackiq/internal/core/apperror"
	appctx "trackiq/internal/core/context"
	"trackiq/internal/core/security"
	"trackiq/internal/domain/auth"
	"trackiq/internal/domain/catalogs/brand"
	"trackiq/internal/domain/catalogs/product"
	"trackiq/internal/domain/catalogs/rawmaterial"
	"trackiq/internal/domain/catalogs/unit"
	"trackiq/internal/domain/inventory"
	"trackiq/pkg/logger"
)

type userSeed struct {
	username, email, password string
	firstName, lastName       string
	role                      security.Role
}

var users = []userSeed{
	{"admin", "admin@trackiq.com", "Admin@123", "Admin", "User", security.RoleAdmin},
	{"manager", "manager@trackiq.com", "Manager@123", "Production", "Manager", security.RoleManager},
}

type materialSeed struct {
	code, name, description, category string
	unit                              unit.Unit
	current, minimum, maximum, cost   float64
}

var materials = []materialSeed{
	{"RM-001", "Organic Wheat Flour", "Premium organic wheat flour", "Grains", unit.Kilogram, 1000, 100, 5000, 2.5},
	{"RM-002", "Natural Coconut Oil", "Cold-pressed coconut oil", "Oils", unit.Liter, 500, 50, 2000, 8.0},
}

func main() {
	envFile := flag.String("env", "", "path to an env file")
	flag.Parse()

	log, err := logger.New(logger.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer a.Close()

	s := &seeder{app: a, log: log}
	if err := s.run(ctx); err != nil {
		log.Fatalw("seeding failed", "error", err)
	}
	log.Info("seeding completed successfully")
}

type seeder struct {
	app *app.App
	log *logger.Logger
}

func (s *seeder) run(ctx context.Context) error {
	var admin *auth.User
	for _, u := range users {
		created, err := s.seedUser(ctx, u)
		if err != nil {
			return err
		}
		if u.role == security.RoleAdmin {
			admin = created
		}
	}

	// act as the admin so audit rows and ledger entries carry a user
	if admin != nil {
		ctx = appctx.WithUser(ctx, &appctx.UserContext{
			UserID:   admin.ID.String(),
			Email:    admin.Email,
			Username: admin.Username,
			Role:     string(admin.Role),
			IsAdmin:  true,
		})
	}

	eco, err := s.seedBrand(ctx, "ECO-001", "EcoFresh Foods", "Organic food products manufacturer",
		brand.ContactPerson{Name: "John Smith", Email: "john@ecofresh.com", Phone: "+1 650-253-0000"})
	if err != nil {
		return err
	}
	if _, err := s.seedBrand(ctx, "PURE-001", "Pure Naturals", "Natural cosmetics manufacturer",
		brand.ContactPerson{Name: "Sarah Johnson", Email: "sarah@purenaturals.com", Phone: "+1 650-253-0001"}); err != nil {
		return err
	}

	for _, m := range materials {
		if err := s.seedMaterial(ctx, eco, m); err != nil {
			return err
		}
	}
	return s.seedProduct(ctx, eco)
}

func (s *seeder) seedUser(ctx context.Context, u userSeed) (*auth.User, error) {
	svc := s.app.Services.Auth
	created, err := svc.CreateUser(ctx, auth.NewUserInput{
		Username:  u.username,
		Email:     u.email,
		Password:  u.password,
		FirstName: u.firstName,
		LastName:  u.lastName,
		Role:      u.role,
	})
	if err == nil {
		s.log.Infow("user created", "email", u.email, "role", string(u.role))
		return created, nil
	}
	if !apperror.HasCode(err, apperror.CodeConflict) {
		return nil, fmt.Errorf("seed user %s: %w", u.email, err)
	}

	s.log.Infow("user already exists", "email", u.email)
	session, err := svc.Login(ctx, auth.Credentials{Email: u.email, Password: u.password})
	if err != nil {
		// password was changed since; seed the rest anonymously
		s.log.Warnw("cannot sign in as seeded user", "email", u.email, "error", err)
		return nil, nil
	}
	return session.User, nil
}

func (s *seeder) seedBrand(ctx context.Context, code, name, description string, contact brand.ContactPerson) (*brand.Brand, error) {
	svc := s.app.Services.Brands
	if b, err := svc.GetByCode(ctx, code); err == nil {
		s.log.Infow("brand already exists", "code", code)
		return b, nil
	} else if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("lookup brand %s: %w", code, err)
	}

	b := brand.NewBrand(code, name)
	b.Description = description
	b.ContactPerson = contact
	if err := svc.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("seed brand %s: %w", code, err)
	}
	s.log.Infow("brand created", "code", b.Code)
	return b, nil
}

func (s *seeder) seedMaterial(ctx context.Context, owner *brand.Brand, in materialSeed) error {
	svc := s.app.Services.RawMaterials
	if _, err := svc.GetByCode(ctx, in.code); err == nil {
		s.log.Infow("raw material already exists", "code", in.code)
		return nil
	} else if !apperror.IsNotFound(err) {
		return fmt.Errorf("lookup raw material %s: %w", in.code, err)
	}

	m := rawmaterial.NewRawMaterial(owner.ID, in.code, in.name, in.unit)
	m.Description = in.description
	m.Category = in.category
	m.StockMinimum = decimal.NewFromFloat(in.minimum)
	m.StockMaximum = decimal.NewFromFloat(in.maximum)
	m.CostPerUnit = decimal.NewFromFloat(in.cost)
	if err := svc.Create(ctx, m); err != nil {
		return fmt.Errorf("seed raw material %s: %w", in.code, err)
	}

	// opening stock goes through the ledger
	_, _, err := s.app.Services.Inventory.Append(ctx, inventory.Posting{
		ItemType:        inventory.ItemRawMaterial,
		ItemID:          m.ID,
		BrandID:         owner.ID,
		Type:            inventory.TxIn,
		Quantity:        decimal.NewFromFloat(in.current),
		ReferenceType:   inventory.RefPurchase,
		ReferenceNumber: "OPENING",
		CostPerUnit:     m.CostPerUnit,
		Notes:           "opening balance",
	})
	if err != nil {
		return fmt.Errorf("post opening stock %s: %w", in.code, err)
	}
	s.log.Infow("raw material created", "code", m.Code, "stock", in.current)
	return nil
}

func (s *seeder) seedProduct(ctx context.Context, owner *brand.Brand) error {
	const code = "FP-001"
	svc := s.app.Services.Products
	if _, err := svc.GetByCode(ctx, code); err == nil {
		s.log.Infow("finished product already exists", "code", code)
		return nil
	} else if !apperror.IsNotFound(err) {
		return fmt.Errorf("lookup finished product %s: %w", code, err)
	}

	p := product.NewFinishedProduct(owner.ID, code, "Organic Whole Wheat Bread")
	p.Description = "Freshly baked organic whole wheat bread"
	p.Category = "Bakery"
	p.PackagingType = product.PackagingBox
	p.WeightPerUnit = product.Weight{Amount: decimal.NewFromInt(500), Unit: "g"}
	p.MinimumPieces = 20
	p.MinimumCartons = 2
	p.ManufacturingCost = decimal.RequireFromString("3.5")
	p.SellingPrice = decimal.NewFromInt(7)
	if err := svc.Create(ctx, p); err != nil {
		return fmt.Errorf("seed finished product %s: %w", code, err)
	}

	// 100 loose pieces and 10 boxes of one
	opening := p.UnitsPerPackage*10 + 100
	_, _, err := s.app.Services.Inventory.Append(ctx, inventory.Posting{
		ItemType:        inventory.ItemFinishedProduct,
		ItemID:          p.ID,
		BrandID:         owner.ID,
		Type:            inventory.TxIn,
		Quantity:        decimal.NewFromInt(opening),
		ReferenceType:   inventory.RefAdjustment,
		ReferenceNumber: "OPENING",
		CostPerUnit:     p.ManufacturingCost,
		Notes:           "opening balance",
	})
	if err != nil {
		return fmt.Errorf("post opening stock %s: %w", code, err)
	}
	s.log.Infow("finished product created", "code", p.Code, "pieces", opening)
	return nil
}
