package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedCoreDictionaries наполняет справочник статусов воронки для организации.
func SeedCoreDictionaries(db *pgxpool.Pool, orgID uint64) {
	ctx := context.Background()
	log.Println("▶️  Запуск наполнения базовых справочников...")

	if err := seedStatuses(ctx, db, orgID); err != nil {
		log.Fatalf("❌ Ошибка наполнения Статусов (Statuses): %v", err)
	}

	log.Println("✅ Наполнение базовых справочников завершено!")
}
