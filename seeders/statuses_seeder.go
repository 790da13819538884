package seeders

import (
	"context"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
)

// КЛЮЧИК: true - обновить имя/цвет, если статус с таким CODE уже существует.
// false - пропустить, если статус с таким CODE уже существует.
const updateIfExists_Statuses = false

func seedStatuses(ctx context.Context, db *pgxpool.Pool, orgID uint64) error {
	log.Println("  - Наполнение таблицы 'statuses'...")

	var query string
	if updateIfExists_Statuses {
		query = `INSERT INTO statuses (organization_id, code, name, label, color, sort, is_default)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (organization_id, code) DO UPDATE SET name = EXCLUDED.name, label = EXCLUDED.label, color = EXCLUDED.color, sort = EXCLUDED.sort;`
		log.Println("    - Стратегия: Обновление существующих статусов (UPSERT)")
	} else {
		query = `INSERT INTO statuses (organization_id, code, name, label, color, sort, is_default)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)
				 ON CONFLICT (organization_id, code) DO NOTHING;`
		log.Println("    - Стратегия: Пропуск существующих статусов (IGNORE)")
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, s := range statusesData {
		if _, err := tx.Exec(ctx, query, orgID, s.Code, s.Name, s.Label, s.Color, s.Sort, s.IsDefault); err != nil {
			log.Printf("Ошибка при вставке/обновлении статуса '%s': %v", s.Name, err)
			return err
		}
	}

	return tx.Commit(ctx)
}
