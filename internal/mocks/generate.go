package mocks

//go:generate mockery --name SalesStore --srcpkg github.com/salesview-lab/salesview/internal/core/storage --output ./storage --outpkg storagemocks
