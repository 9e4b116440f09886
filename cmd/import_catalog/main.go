// import_catalog carga productos desde una exportación CSV del catálogo.
// El stock de cada fila entra como movimiento "Stock inicial".
//
// Uso: go run ./cmd/import_catalog [-encoding auto|utf8|latin1] [-actor <user_id>] [-dry-run] catalogo.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/biomed-stock/internal/application/inventory"
	"github.com/jhoicas/biomed-stock/internal/application/usecase"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/catalogcsv"
	"github.com/jhoicas/biomed-stock/internal/infrastructure/postgres"
	"github.com/jhoicas/biomed-stock/pkg/config"
	"github.com/jhoicas/biomed-stock/pkg/logger"
)

func main() {
	encoding := flag.String("encoding", string(catalogcsv.EncodingAuto), "codificación del archivo: auto, utf8 o latin1")
	actor := flag.String("actor", "", "id del usuario al que se atribuyen los movimientos")
	dryRun := flag.Bool("dry-run", false, "solo valida el archivo, no escribe")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: import_catalog [-encoding auto|utf8|latin1] [-actor id] [-dry-run] archivo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	reqs, rowErrs, err := catalogcsv.Read(f, catalogcsv.Encoding(*encoding))
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}
	for _, re := range rowErrs {
		log.Warn().Int("fila", re.Line).Err(re.Err).Msg("fila rechazada")
	}
	log.Info().Int("validas", len(reqs)).Int("rechazadas", len(rowErrs)).Msg("archivo leído")
	if *dryRun {
		return
	}
	if cfg.DB.Driver != "postgres" {
		log.Fatal().Msg("la importación requiere DB_DRIVER=postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	tx := postgres.NewTxRunner(pool)
	products := postgres.NewProductRepository(pool)
	ledger := inventory.NewStockLedger(tx, products, postgres.NewStockMovementRepository(pool), log.Component("ledger"))
	productUC := usecase.NewProductUseCase(tx, products, postgres.NewCategoryRepository(pool), ledger, log.Component("products"))

	sum, err := catalogcsv.Import(ctx, productUC, reqs, *actor, log.Component("import"))
	log.Info().Int("creados", sum.Created).Int("omitidos", sum.Skipped).Int("fallidos", sum.Failed).Msg("importación terminada")
	if err != nil {
		log.Fatal().Err(err).Msg("importación interrumpida")
	}
}
