// Command setup-vector-store provisions the knowledge base: it uploads the
// documents in the data directory, creates a vector store, waits for
// ingestion to finish, regenerates the document registry, and records the
// vector store ID in the .env file.
//
// Usage:
//
//	go run ./cmd/setup-vector-store [flags]
//
// With --update-only it skips uploading and only regenerates the registry
// from an existing vector store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/helpdock/helpdock/internal/openai"
	"github.com/joho/godotenv"
)

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".html": true,
	".txt":  true,
	".md":   true,
	".docx": true,
	".doc":  true,
}

// DocumentInfo describes one uploaded knowledge-base document.
type DocumentInfo struct {
	FileID      string `json:"file_id"`
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func main() {
	dataDir := flag.String("data-dir", "data", "directory containing knowledge base documents")
	name := flag.String("name", "", "name for the vector store (default: ASSISTANT_NAME or 'Knowledge Assistant')")
	vectorStoreID := flag.String("vector-store-id", "", "use an existing vector store instead of creating one")
	updateOnly := flag.Bool("update-only", false, "only regenerate the document registry from an existing vector store")
	registryPath := flag.String("registry", "data/documents.json", "path of the generated document registry")
	envFile := flag.String("env-file", ".env", "env file to record VECTOR_STORE_ID in")
	flag.Parse()

	_ = godotenv.Load(*envFile)

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "Error: OPENAI_API_KEY environment variable is required")
		os.Exit(1)
	}

	client := openai.NewClient(apiKey, os.Getenv("OPENAI_BASE_URL"))
	ctx := context.Background()

	if *updateOnly {
		storeID := *vectorStoreID
		if storeID == "" {
			storeID = os.Getenv("VECTOR_STORE_ID")
		}
		if storeID == "" {
			fmt.Fprintln(os.Stderr, "Error: --update-only requires --vector-store-id or VECTOR_STORE_ID")
			os.Exit(1)
		}
		if err := regenerateRegistry(ctx, client, storeID, *registryPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	documents, err := collectDocuments(*dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Uploading %d documents to OpenAI...\n", len(documents))
	uploaded := make([]DocumentInfo, 0, len(documents))
	fileIDs := make([]string, 0, len(documents))
	for _, path := range documents {
		file, err := uploadDocument(ctx, client, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to upload %s: %v\n", filepath.Base(path), err)
			os.Exit(1)
		}
		fmt.Printf("  uploaded %s (%s)\n", file.Filename, file.ID)
		uploaded = append(uploaded, DocumentInfo{
			FileID:      file.ID,
			Filename:    file.Filename,
			Title:       generateTitle(file.Filename),
			Description: "Knowledge base document uploaded from " + file.Filename,
		})
		fileIDs = append(fileIDs, file.ID)
	}

	storeID := *vectorStoreID
	if storeID == "" {
		storeName := *name
		if storeName == "" {
			storeName = os.Getenv("ASSISTANT_NAME")
		}
		if storeName == "" {
			storeName = "Knowledge Assistant"
		}
		store, err := client.CreateVectorStore(ctx, storeName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create vector store: %v\n", err)
			os.Exit(1)
		}
		storeID = store.ID
		fmt.Printf("Created vector store %q (%s)\n", storeName, storeID)
	}

	if err := ingestFiles(ctx, client, storeID, fileIDs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := writeRegistry(*registryPath, uploaded); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote document registry: %s\n", *registryPath)

	if err := updateEnvFile(*envFile, storeID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Recorded VECTOR_STORE_ID=%s in %s\n", storeID, *envFile)
}

// collectDocuments lists supported document files in the data directory.
func collectDocuments(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("data directory not found: %s (create it and add your documents)", dataDir)
	}

	var documents []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			documents = append(documents, filepath.Join(dataDir, entry.Name()))
		}
	}
	sort.Strings(documents)

	if len(documents) == 0 {
		return nil, fmt.Errorf("no documents found in %s (supported: .pdf .html .txt .md .docx .doc)", dataDir)
	}
	return documents, nil
}

func uploadDocument(ctx context.Context, client *openai.Client, path string) (*openai.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return client.UploadFile(ctx, filepath.Base(path), f, "assistants")
}

// ingestFiles attaches the uploaded files to the vector store and polls the
// batch until ingestion reaches a terminal state.
func ingestFiles(ctx context.Context, client *openai.Client, storeID string, fileIDs []string) error {
	batch, err := client.CreateFileBatch(ctx, storeID, fileIDs)
	if err != nil {
		return fmt.Errorf("failed to create file batch: %w", err)
	}

	fmt.Print("Waiting for ingestion")
	deadline := time.Now().Add(5 * time.Minute)
	for !batch.Done() {
		if time.Now().After(deadline) {
			return fmt.Errorf("timed out waiting for file batch %s", batch.ID)
		}
		time.Sleep(2 * time.Second)
		fmt.Print(".")
		batch, err = client.GetFileBatch(ctx, storeID, batch.ID)
		if err != nil {
			return fmt.Errorf("failed to poll file batch: %w", err)
		}
	}
	fmt.Println()

	if batch.Status != "completed" || batch.FileCounts.Failed > 0 {
		return fmt.Errorf("ingestion finished with status %s (%d of %d files failed)",
			batch.Status, batch.FileCounts.Failed, batch.FileCounts.Total)
	}
	fmt.Printf("Ingested %d files\n", batch.FileCounts.Completed)
	return nil
}

// regenerateRegistry rebuilds the registry from the files already attached
// to an existing vector store.
func regenerateRegistry(ctx context.Context, client *openai.Client, storeID, registryPath string) error {
	files, err := client.ListVectorStoreFiles(ctx, storeID)
	if err != nil {
		return fmt.Errorf("failed to list vector store files: %w", err)
	}

	documents := make([]DocumentInfo, 0, len(files))
	for _, vsFile := range files {
		file, err := client.GetFile(ctx, vsFile.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch file %s: %w", vsFile.ID, err)
		}
		documents = append(documents, DocumentInfo{
			FileID:      file.ID,
			Filename:    file.Filename,
			Title:       generateTitle(file.Filename),
			Description: "Knowledge base document uploaded from " + file.Filename,
		})
	}

	if err := writeRegistry(registryPath, documents); err != nil {
		return err
	}
	fmt.Printf("Wrote document registry with %d entries: %s\n", len(documents), registryPath)
	return nil
}

// generateTitle turns a filename like "01_refund_policy.pdf" into
// "Refund Policy".
func generateTitle(filename string) string {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	if stem != "" && stem[0] >= '0' && stem[0] <= '9' {
		if _, rest, found := strings.Cut(stem, "_"); found {
			stem = rest
		}
	}
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")

	words := strings.Fields(stem)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func writeRegistry(path string, documents []DocumentInfo) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create registry directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(documents, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// updateEnvFile inserts or replaces the VECTOR_STORE_ID line.
func updateEnvFile(path, storeID string) error {
	line := "VECTOR_STORE_ID=" + storeID

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return os.WriteFile(path, []byte(line+"\n"), 0o644)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	replaced := false
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "VECTOR_STORE_ID=") {
			lines[i] = line
			replaced = true
			break
		}
	}
	if !replaced {
		lines = append(lines, line)
	}

	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}
