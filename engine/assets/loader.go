package assets

import "github.com/spaghettifunk/grindsim/engine/resources"

type Loader interface {
	Load(path string, params interface{}) (*resources.Resource, error) // `interface{}` here allows loaders to take various parameter types
	Unload(*resources.Resource) error
}
