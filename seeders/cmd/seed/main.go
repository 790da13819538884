package main

import (
	"flag"
	"log"

	"crm-pipeline/pkg/config"
	"crm-pipeline/pkg/database/postgresql"
	"crm-pipeline/seeders"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	log.Println("======================================================")
	log.Println("       🌱 СИСТЕМА СИДЕРОВ (Наполнение БД)           ")
	log.Println("======================================================")

	runCore := flag.Bool("core", false, "Запустить наполнение справочника статусов")
	orgID := flag.Uint64("org", 1, "ID организации, для которой создаются статусы")
	flag.Parse()

	if !*runCore {
		log.Println("❌ Не выбран ни один сидер для запуска.")
		log.Println("")
		log.Println("Доступные флаги:")
		flag.PrintDefaults()
		log.Println("")
		log.Println("Пример использования:")
		log.Println("  go run ./seeders/cmd/seed/main.go -core -org 1")
		log.Println("======================================================")
		return
	}

	cfg := config.New()
	db := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer db.Close()

	seeders.SeedCoreDictionaries(db, *orgID)
}
