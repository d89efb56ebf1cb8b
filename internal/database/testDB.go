package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	// Load env
	_ "github.com/joho/godotenv/autoload"

	m "github.com/DeUskov/rezumy09/internal/model"
	"github.com/DeUskov/rezumy09/internal/utilities"
)

var testDBInstance *DBinstanceStruct
var teardown func(context.Context, ...testcontainers.TerminateOption) error

// Exported test users & generations
var (
	TestUser1     m.User
	TestUser2     m.User
	TestAdminUser m.User

	// Shared plain password for every seeded user
	TestSeedPassword = "SeedPass123!"

	// TestGeneration1 and TestGeneration2 belong to TestUser1,
	// TestGeneration3 belongs to TestUser2.
	TestGeneration1 m.Generation
	TestGeneration2 m.Generation
	TestGeneration3 m.Generation
)

// GetTestDB starts a PostgreSQL test container and returns a teardown function,
// the DB instance, and any error encountered during setup.
func GetTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, *DBinstanceStruct, error) {

	if testDBInstance != nil && teardown != nil {
		return teardown, testDBInstance, nil
	}

	// Database configuration
	var (
		dbName = "database"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:latest",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	if err != nil {
		return nil, nil, err
	}

	dbHost, err := dbContainer.Host(context.Background())
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	dbPort, err := dbContainer.MappedPort(context.Background(), nat.Port("5432/tcp"))
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	config := &DBConfig{
		useConstr: true,
		Constr:    fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", dbHost, dbPort.Port(), dbUser, dbPwd, dbName),
	}

	db, err := NewDBInstance(config)
	if err != nil {
		return dbContainer.Terminate, nil, err
	}

	if err := seedTestData(db); err != nil {
		_ = dbContainer.Terminate(context.Background())
		return nil, nil, err
	}

	testDBInstance = db
	teardown = dbContainer.Terminate

	return dbContainer.Terminate, db, nil
}

// seedTestData inserts two regular users, an admin and three saved
// generations if the database is still empty.
func seedTestData(db *DBinstanceStruct) error {
	var userCount int64
	if err := db.Model(&m.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	// Ignore admin user that got create during NewDBInstance
	if userCount > 1 {
		return loadTestData(db)
	}

	hashedPwd, errHash := utilities.HashPassword(TestSeedPassword)
	if errHash != nil {
		return errHash
	}

	userSpecs := []struct {
		username string
		email    string
		role     string
	}{
		{"anna_dev", "anna@example.com", m.RoleUser},
		{"boris_qa", "boris@example.com", m.RoleUser},
		{"admin_user", "admin@example.com", m.RoleAdmin},
	}

	users := make([]m.User, 0, len(userSpecs))
	for _, s := range userSpecs {
		email := s.email
		users = append(users, m.User{
			ID:       uuid.New(),
			Username: s.username,
			Email:    &email,
			Role:     s.role,
			Password: hashedPwd,
		})
	}

	if err := db.Create(&users).Error; err != nil {
		return err
	}

	for _, u := range users {
		switch u.Username {
		case "anna_dev":
			TestUser1 = u
		case "boris_qa":
			TestUser2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	resumeBlob, err := json.Marshal(m.ResumeData{
		PersonalInfo: m.PersonalInfo{FirstName: "Anna", LastName: "Petrova", Email: "anna@example.com"},
		Skills:       m.SkillSet{HardSkills: []string{"Go", "PostgreSQL"}, SoftSkills: []string{"Communication"}},
		Summary:      "Backend engineer, five years with Go services.",
	})
	if err != nil {
		return err
	}
	jobBlob, err := json.Marshal(m.JobData{
		JobTitle:    "Go Developer",
		CompanyName: "TechNova",
		Location:    "Remote",
		SourceURL:   "https://hh.ru/vacancy/101",
	})
	if err != nil {
		return err
	}
	scoringBlob, err := json.Marshal(m.ScoringResult{
		TotalScore: 82,
		Breakdown: m.ScoreBreakdown{
			HardSkills:      m.CategoryScore{Score: 85, Summary: "strong"},
			SoftSkills:      m.CategoryScore{Score: 74, Summary: "fine"},
			ExperienceMatch: m.CategoryScore{Score: 80, Summary: "close"},
			PositionMatch:   m.CategoryScore{Score: 88, Summary: "good"},
		},
		Recommendation: "apply",
	})
	if err != nil {
		return err
	}

	score1 := 82
	score3 := 55
	title2 := "Draft for DataForge"

	generations := []m.Generation{
		{
			UserID:           TestUser1.ID,
			JobTitle:         "Go Developer",
			CompanyName:      "TechNova",
			OverallScore:     &score1,
			CoverLetterText:  "Dear TechNova team,\n\nI am excited to apply...",
			ScoringResults:   scoringBlob,
			ResumeData:       resumeBlob,
			JobData:          jobBlob,
			Status:           m.GenerationCompleted,
			SimilarPositions: pq.StringArray{"Backend Developer", "Platform Engineer"},
		},
		{
			UserID:          TestUser1.ID,
			JobTitle:        "Data Engineer",
			CompanyName:     "DataForge",
			CoverLetterText: "Dear DataForge team,",
			ResumeData:      resumeBlob,
			JobData:         jobBlob,
			Title:           &title2,
			Status:          m.GenerationDraft,
		},
		{
			UserID:          TestUser2.ID,
			JobTitle:        "QA Engineer",
			CompanyName:     "TechNova",
			OverallScore:    &score3,
			CoverLetterText: "Dear hiring manager,",
			ScoringResults:  scoringBlob,
			ResumeData:      resumeBlob,
			JobData:         jobBlob,
			Status:          m.GenerationCompleted,
		},
	}

	// Insert one by one so created_at ordering is deterministic.
	for i := range generations {
		if err := db.Create(&generations[i]).Error; err != nil {
			return err
		}
		time.Sleep(10 * time.Millisecond)
	}

	TestGeneration1 = generations[0]
	TestGeneration2 = generations[1]
	TestGeneration3 = generations[2]

	return nil
}

// loadTestData populates exported variables when records already exist.
func loadTestData(db *DBinstanceStruct) error {
	var users []m.User
	if err := db.Where("username IN ?", []string{"anna_dev", "boris_qa", "admin_user"}).Find(&users).Error; err != nil {
		return err
	}
	for _, u := range users {
		switch u.Username {
		case "anna_dev":
			TestUser1 = u
		case "boris_qa":
			TestUser2 = u
		case "admin_user":
			TestAdminUser = u
		}
	}

	var generations []m.Generation
	if err := db.Order("created_at ASC").Limit(3).Find(&generations).Error; err != nil {
		return err
	}
	if len(generations) > 0 {
		TestGeneration1 = generations[0]
	}
	if len(generations) > 1 {
		TestGeneration2 = generations[1]
	}
	if len(generations) > 2 {
		TestGeneration3 = generations[2]
	}

	return nil
}
