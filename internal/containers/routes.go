package containers

// Page paths shared by the containers and the HTTP router.
const (
	RouteLogin   = "/"
	RouteBills   = "/employee/bills"
	RouteNewBill = "/employee/bill/new"
)

// Navigator moves the browser to another page.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a plain function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }
