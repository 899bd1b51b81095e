package profile

import (
	"fmt"
	"sort"

	"github.com/sokinpui/blocktoggle/model"
)

const (
	KindURDF model.Kind = "urdf"
	KindUSD  model.Kind = "usd"
)

// Unitree switches the spawn blocks of unitree_rl_lab's robot config:
//
//	GO2_CFG = UnitreeArticulationCfg(
//	    spawn=UnitreeUrdfFileCfg(
//	        asset_path=f"{UNITREE_ROS_DIR}/robots/go2_description/urdf/go2_description.urdf",
//	    ),
//	    # spawn=UnitreeUsdFileCfg(
//	    #     usd_path=f"{UNITREE_MODEL_DIR}/Go2/usd/go2.usd",
//	    # ),
//	    ...
//	)
var Unitree = Spec{
	Name:        "unitree",
	DefaultFile: "unitree_rl_lab/source/unitree_rl_lab/unitree_rl_lab/assets/robots/unitree.py",
	Marker:      "#",
	Open:        "(",
	Close:       ")",
	RegionStart: `^(?P<indent>[ \t]*)(?P<var>[A-Z0-9_]+_CFG)\s*=\s*UnitreeArticulationCfg\s*\(\s*$`,
	Header:      `^(?P<indent>[ \t]*)(?P<prefix>#\s*)?spawn\s*=\s*(?P<kind>Unitree(?:Urdf|Usd)FileCfg)\s*\(\s*$`,
	Footer:      `^(?P<indent>[ \t]*)(?P<prefix>#\s*)?\)\s*,\s*$`,
	Directive:   `^(?P<indent>[ \t]*)(?P<name>UNITREE_(?:ROS|MODEL)_DIR)\s*=\s*(?:"(?P<dval>[^"\r\n]*)"|'(?P<sval>[^'\r\n]*)')(?P<tail>[ \t]*(?:#.*)?)$`,
	Kinds: map[string]model.Kind{
		"UnitreeUrdfFileCfg": KindURDF,
		"UnitreeUsdFileCfg":  KindUSD,
	},
	Directives: []DirectiveSpec{
		{
			Name:       "UNITREE_ROS_DIR",
			Flag:       "ros",
			DefaultRel: "unitree_ros",
			Nested:     "unitree_ros",
			Marker:     "package.xml",
		},
		{
			Name:       "UNITREE_MODEL_DIR",
			Flag:       "model",
			DefaultRel: "unitree_model",
			Kinds:      []model.Kind{KindUSD},
		},
	},
}

var builtins = map[string]Spec{
	Unitree.Name: Unitree,
}

// Builtin compiles a built-in profile by name.
func Builtin(name string) (*Profile, error) {
	s, ok := builtins[name]
	if !ok {
		return nil, fmt.Errorf("unknown profile %q (available: %v)", name, BuiltinNames())
	}
	return Compile(s)
}

// BuiltinNames lists the built-in profile names.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
