package scene

import (
	"github.com/yohamta/donburi"

	"github.com/gogpu/sprite"
	"github.com/gogpu/sprite/asset"
)

// Component types of sprite entities. A plain sprite entity carries
// Transform, Sprite and ImageRef; an atlas sprite entity carries
// Transform, AtlasSprite and AtlasRef.
var (
	Transform   = donburi.NewComponentType[sprite.GlobalTransform]()
	Sprite      = donburi.NewComponentType[sprite.Sprite]()
	AtlasSprite = donburi.NewComponentType[sprite.AtlasSprite]()
	ImageRef    = donburi.NewComponentType[asset.Handle[sprite.Image]]()
	AtlasRef    = donburi.NewComponentType[asset.Handle[sprite.TextureAtlas]]()

	// Hidden excludes an entity from rendering without despawning it.
	Hidden = donburi.NewTag()
)
