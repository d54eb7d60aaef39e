package mocks

//go:generate mockery --name Geocoder --srcpkg github.com/LukaszPCyber/Zadanie/internal/geo --output ./geo --outpkg geomocks --with-expecter
