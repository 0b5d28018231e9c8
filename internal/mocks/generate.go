package mocks

//go:generate mockery --name Scanner --srcpkg github.com/netrics-lab/netrics-dashboard/internal/dashboard --output ./dashboard --outpkg dashboardmocks --with-expecter
