package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("speakers")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true},
			&core.TextField{Name: "title"},
			&core.TextField{Name: "company"},
			&core.EditorField{Name: "bio"},
			&core.TextField{Name: "topic"},
			&core.URLField{Name: "photo_url"},
			&core.BoolField{Name: "published"},
			&core.NumberField{Name: "sort_order", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("speakers")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}
