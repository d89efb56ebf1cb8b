// Command clean-db prunes archived generations past their retention window
// and removes storage objects no file row references anymore.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/DeUskov/rezumy09/internal/controller/file"
	"github.com/DeUskov/rezumy09/internal/database"
	"github.com/DeUskov/rezumy09/internal/model"
)

func main() {
	retentionDays := flag.Int("days", 30, "archived generations older than this many days are deleted")
	skipStorage := flag.Bool("skip-storage", false, "skip the orphaned storage object sweep")
	flag.Parse()

	cutoff := time.Now().AddDate(0, 0, -*retentionDays)

	fmt.Printf("This will permanently delete generations archived before %s", cutoff.Format(time.RFC3339))
	if !*skipStorage {
		fmt.Print(" and any unreferenced resume objects in the storage bucket")
	}
	fmt.Println(".")
	fmt.Print("This action is irreversible. Do you want to continue? (yes/no): ")

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
	if strings.TrimSpace(strings.ToLower(input)) != "yes" {
		fmt.Println("Operation cancelled.")
		return
	}

	db, err := database.GetMainDB()
	if err != nil {
		log.Fatalf("Database failed to initialize: %v", err)
	}

	res := db.Where("status = ? AND updated_at < ?", model.GenerationArchived, cutoff).
		Delete(&model.Generation{})
	if res.Error != nil {
		log.Fatalf("failed to delete archived generations: %v", res.Error)
	}
	fmt.Printf("Deleted %d archived generations.\n", res.RowsAffected)

	if *skipStorage {
		return
	}

	bucket := os.Getenv("STORAGE_BUCKET")
	if bucket == "" {
		fmt.Println("STORAGE_BUCKET is not set, skipping the storage sweep.")
		return
	}

	storage, err := file.NewCloudStorageClient(bucket)
	if err != nil {
		log.Fatalf("failed to connect to cloud storage: %v", err)
	}

	var referenced []string
	if err := db.Model(&model.File{}).
		Where("storage_object_name IS NOT NULL").
		Pluck("storage_object_name", &referenced).Error; err != nil {
		log.Fatalf("failed to list referenced objects: %v", err)
	}
	known := make(map[string]bool, len(referenced))
	for _, name := range referenced {
		known[name] = true
	}

	objects, err := storage.ListFiles(file.ResumeObjectPrefix + "/")
	if err != nil {
		log.Fatalf("failed to list storage objects: %v", err)
	}

	removed := 0
	for _, name := range objects {
		if known[name] {
			continue
		}
		if err := storage.DeleteFile(name); err != nil {
			log.Printf("failed to delete orphaned object %s: %v", name, err)
			continue
		}
		removed++
	}
	fmt.Printf("Removed %d orphaned storage objects.\n", removed)
}
