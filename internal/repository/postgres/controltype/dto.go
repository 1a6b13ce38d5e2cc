package controltype

import "lunch/backend/internal/repository/postgres"

type Filter = postgres.ListFilter
