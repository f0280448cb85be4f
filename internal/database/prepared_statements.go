package database

import (
	"log"
	"sync"

	"github.com/gocql/gocql"
)

var (
	// Prepared statements for the login hot path. Every request with a
	// JWT skips these; registration and password login hit them.
	stmtGetUserByEmail    *gocql.Query
	stmtGetUserByID       *gocql.Query
	stmtInsertUser        *gocql.Query
	stmtInsertUserByEmail *gocql.Query

	preparedOnce sync.Once
)

// InitPreparedStatements prepares the frequent queries once at boot.
func InitPreparedStatements() {
	preparedOnce.Do(func() {
		customers, err := GetCustomersSession()
		if err != nil {
			log.Printf("⚠️ Cannot prepare customer statements: %v", err)
			return
		}

		stmtGetUserByEmail = customers.Query("SELECT user_id FROM users_by_email WHERE email = ?")

		stmtGetUserByID = customers.Query(`SELECT email, password, name, role, provider, provider_id, created_at
			FROM users WHERE user_id = ?`)

		stmtInsertUser = customers.Query(`INSERT INTO users (user_id, email, password, name, role, provider, provider_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

		stmtInsertUserByEmail = customers.Query("INSERT INTO users_by_email (email, user_id) VALUES (?, ?)")

		log.Println("✅ Prepared statements initialised")
	})
}

func GetPreparedGetUserByEmail() *gocql.Query {
	return stmtGetUserByEmail
}

func GetPreparedGetUserByID() *gocql.Query {
	return stmtGetUserByID
}

func GetPreparedInsertUser() *gocql.Query {
	return stmtInsertUser
}

func GetPreparedInsertUserByEmail() *gocql.Query {
	return stmtInsertUserByEmail
}
