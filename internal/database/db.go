package database

import (
    "context"
    "database/sql"
    "time"

    "github.com/go-sql-driver/mysql"
)

// DSN builds the driver DSN.  Times are parsed into time.Time in UTC and
// clientFoundRows makes RowsAffected count matched rows, so an update
// that rewrites identical values still reports one row.
func DSN(user, pass, host, port, name string) string {
    cfg := mysql.NewConfig()
    cfg.User = user
    cfg.Passwd = pass
    cfg.Net = "tcp"
    cfg.Addr = host + ":" + port
    cfg.DBName = name
    cfg.ParseTime = true
    cfg.Loc = time.UTC
    cfg.ClientFoundRows = true
    cfg.Params = map[string]string{"charset": "utf8mb4"}
    return cfg.FormatDSN()
}

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
    db, err := sql.Open("mysql", DSN(user, pass, host, port, name))
    if err != nil {
        return nil, err
    }

    // Pool settings
    db.SetMaxOpenConns(25)
    db.SetMaxIdleConns(25)
    db.SetConnMaxLifetime(30 * time.Minute)

    // Ping with timeout
    ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := db.PingContext(ctx); err != nil {
        _ = db.Close()
        return nil, err
    }
    return db, nil
}
