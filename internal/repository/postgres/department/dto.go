package department

import "lunch/backend/internal/repository/postgres"

type Filter = postgres.ListFilter
