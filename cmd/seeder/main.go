// Command seeder creates or refreshes the bootstrap accounts, including the
// privileged ones self-service registration cannot create.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/unidesk/internal/app"
	"github.com/dmitrijs2005/unidesk/internal/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("%v", err)
	}

}

// run seeds the directory and reports the outcome to w. Any failure is
// returned so main exits non-zero.
func run(ctx context.Context, cfg *config.Config, w io.Writer) error {
	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Seed(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Seeding finished: %d created, %d updated\n", res.Created, res.Updated)
	return nil
}
