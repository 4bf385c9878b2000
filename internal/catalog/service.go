package catalog

import (
	"errors"

	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/restclient"
)

const (
	clientsPath   = "/clients"
	desksPath     = "/desks"
	employeesPath = "/employees"
	productsPath  = "/products"
)

// Service groups the back-office resources exposed by the restaurant API.
type Service struct {
	Clients   *restclient.Resource[Client]
	Desks     *restclient.Resource[Desk]
	Employees *restclient.Resource[Employee]
	Products  *Products
}

func NewService(client *restclient.Client, logg *logger.Logger) (*Service, error) {
	if client == nil {
		return nil, errors.New("rest client required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{
		Clients:   restclient.NewResource[Client](client, clientsPath),
		Desks:     restclient.NewResource[Desk](client, desksPath),
		Employees: restclient.NewResource[Employee](client, employeesPath),
		Products:  newProducts(client, logg),
	}, nil
}
