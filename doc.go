// Package booklend is a peer-to-peer book-lending coordinator: owners list
// books, borrowers request them, owners approve, reject and track returns.
//
// Project structure:
/*
booklend-backend/
├── cmd/
│   └── server/
│       └── main.go          HTTP server entry point
├── internal/
│   ├── config/              environment-based configuration
│   ├── models/              GORM entities and enums
│   ├── apperrors/           classified error taxonomy
│   ├── lending/             borrow-request lifecycle engine + shadow filter
│   ├── identity/            current-identity snapshot and change stream
│   ├── handlers/            gin handlers per resource
│   ├── services/            business logic over the persistence layer
│   ├── middleware/          auth, cors, i18n, rate limit, metrics, logging
│   ├── database/            connection and migrations
│   ├── i18n/                key-based translations (en, zh_TW)
│   ├── utils/               response envelope, jwt, validation, pagination
│   └── router/              route wiring
├── go.mod
└── go.sum
*/
package booklend
