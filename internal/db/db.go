// Файл: internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // SQLite driver
)

// Store — единственный держатель долговременного состояния. Все мутирующие
// операции проходят через один writer (mu), читатели работают параллельно.
// Store is the sole durable state holder. All mutating operations go through
// a single writer (mu); readers proceed concurrently.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open открывает (и при необходимости создаёт) базу данных по указанному пути
// и выполняет создание схемы.
// Open opens (creating if needed) the database at the given path and applies
// the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("путь к базе данных не задан")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}

	// Встроенный SQLite не любит конкурирующие writer-соединения; пишем через
	// один writer, поэтому одного соединения достаточно.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ошибка проверки соединения с базой данных: %w", err)
	}

	s := &Store{db: sqlDB}
	if err := s.createSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ошибка создания схемы: %w", err)
	}

	log.Info().Str("path", path).Msg("база данных инициализирована")
	return s, nil
}

// createSchema создаёт таблицы и индексы, если их ещё нет. Идемпотентно.
// Внешние ключи объявлены, но не включены (PRAGMA foreign_keys отключён по
// умолчанию): удаление пользователя намеренно оставляет заказы, отклики и
// отзывы висячими историческими записями.
func (s *Store) createSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	createTablesSQL := `
        CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            chat_id INTEGER UNIQUE NOT NULL,
            role TEXT NOT NULL CHECK (role IN ('worker', 'client')),
            created_at TIMESTAMP NOT NULL
        );
        CREATE TABLE IF NOT EXISTS worker_profiles (
            user_id INTEGER PRIMARY KEY REFERENCES users(id),
            name TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            regions TEXT NOT NULL DEFAULT '[]',
            categories TEXT NOT NULL DEFAULT '[]',
            experience TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            portfolio_photos TEXT NOT NULL DEFAULT '[]',
            rating REAL NOT NULL DEFAULT 0,
            rating_count INTEGER NOT NULL DEFAULT 0,
            verified_reviews INTEGER NOT NULL DEFAULT 0
        );
        CREATE TABLE IF NOT EXISTS client_profiles (
            user_id INTEGER PRIMARY KEY REFERENCES users(id),
            name TEXT NOT NULL DEFAULT '',
            phone TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            description TEXT NOT NULL DEFAULT '',
            rating REAL NOT NULL DEFAULT 0,
            rating_count INTEGER NOT NULL DEFAULT 0
        );
        CREATE TABLE IF NOT EXISTS orders (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            client_id INTEGER NOT NULL REFERENCES users(id),
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            city TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT '',
            category TEXT NOT NULL DEFAULT '',
            budget_type TEXT NOT NULL CHECK (budget_type IN ('fixed', 'flexible')),
            budget_value REAL,
            deadline TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL,
            updated_at TIMESTAMP NOT NULL
        );
        CREATE TABLE IF NOT EXISTS bids (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            order_id INTEGER NOT NULL REFERENCES orders(id),
            worker_id INTEGER NOT NULL REFERENCES users(id),
            price REAL NOT NULL,
            deadline TEXT NOT NULL DEFAULT '',
            comment TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            created_at TIMESTAMP NOT NULL,
            updated_at TIMESTAMP NOT NULL
        );
        CREATE TABLE IF NOT EXISTS contacts_access (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            order_id INTEGER NOT NULL REFERENCES orders(id),
            worker_id INTEGER NOT NULL REFERENCES users(id),
            client_id INTEGER NOT NULL REFERENCES users(id),
            paid INTEGER NOT NULL DEFAULT 0,
            paid_at TIMESTAMP,
            created_at TIMESTAMP NOT NULL,
            UNIQUE (order_id, worker_id)
        );
        CREATE TABLE IF NOT EXISTS reviews (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            order_id INTEGER NOT NULL REFERENCES orders(id),
            from_user_id INTEGER NOT NULL REFERENCES users(id),
            to_user_id INTEGER NOT NULL REFERENCES users(id),
            role_from TEXT NOT NULL,
            role_to TEXT NOT NULL,
            rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
            comment TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMP NOT NULL,
            UNIQUE (order_id, from_user_id, to_user_id)
        );
    `
	if _, err = tx.Exec(createTablesSQL); err != nil {
		return fmt.Errorf("ошибка создания таблиц: %w", err)
	}

	createIndexesSQL := `
        CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at);
        CREATE INDEX IF NOT EXISTS idx_orders_client_id ON orders(client_id);
        CREATE INDEX IF NOT EXISTS idx_bids_order_id ON bids(order_id);
        CREATE INDEX IF NOT EXISTS idx_bids_worker_id ON bids(worker_id);
        CREATE INDEX IF NOT EXISTS idx_reviews_to_user_id ON reviews(to_user_id);
        CREATE INDEX IF NOT EXISTS idx_contacts_access_order ON contacts_access(order_id);
    `
	if _, err = tx.Exec(createIndexesSQL); err != nil {
		return fmt.Errorf("ошибка создания индексов: %w", err)
	}

	return tx.Commit()
}

// withWriteTx выполняет fn внутри транзакции под writer-мьютексом.
// Любая ошибка fn откатывает транзакцию целиком: частичные записи наружу не
// выходят.
// withWriteTx runs fn in a transaction under the writer mutex. Any error from
// fn rolls the whole transaction back: partial writes cannot escape.
func (s *Store) withWriteTx(fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return nil
}

// Close закрывает соединение с базой данных.
// Close closes the database connection.
func (s *Store) Close() {
	if s != nil && s.db != nil {
		s.db.Close()
		log.Info().Msg("соединение с базой данных закрыто")
	}
}
