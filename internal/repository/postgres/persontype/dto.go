package persontype

import "lunch/backend/internal/repository/postgres"

type Filter = postgres.ListFilter
