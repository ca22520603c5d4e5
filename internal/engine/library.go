package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tradebridge/internal/model"

	"github.com/ebitengine/purego"
)

const DefaultLibrary = "placeOrder.so"

// Library 通过动态库调用执行引擎。每次调用都重新加载（dlopen 有引用计数，重复加载开销很小），
// Go 编译的 c-shared 库不能安全卸载，所以从不 dlclose。
type Library struct {
	Path string
}

// NewLibrary 为空时使用可执行文件同目录下的 placeOrder.so。
// dlopen 对不带 / 的名字按 soname 搜索系统路径，这里统一改成相对当前目录。
func NewLibrary(path string) *Library {
	if path == "" {
		path = defaultLibraryPath()
	}
	if !strings.ContainsRune(path, '/') {
		path = "./" + path
	}
	return &Library{Path: path}
}

func defaultLibraryPath() string {
	exe, err := os.Executable()
	if err != nil {
		return DefaultLibrary
	}
	return filepath.Join(filepath.Dir(exe), DefaultLibrary)
}

type placeOrderFn func(symbol string, side, amountKind int32, amount string, amountPrecision, mode int32) int32

type tradeCustomPriceFn func(symbol string, side, amountKind int32, amount string, amountPrecision, mode int32, price string, pricePrecision int32) int32

func (l *Library) open() (uintptr, error) {
	handle, err := purego.Dlopen(l.Path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, fmt.Errorf("%w: load %s: %v", model.ErrForeignCall, l.Path, err)
	}
	return handle, nil
}

func (l *Library) symbol(handle uintptr, name string) (uintptr, error) {
	sym, err := purego.Dlsym(handle, name)
	if err != nil {
		return 0, fmt.Errorf("%w: bind %s in %s: %v", model.ErrForeignCall, name, l.Path, err)
	}
	return sym, nil
}

func (l *Library) PlaceOrder(args OrderArgs) (int32, error) {
	handle, err := l.open()
	if err != nil {
		return 0, err
	}
	sym, err := l.symbol(handle, "PlaceOrder")
	if err != nil {
		return 0, err
	}
	var fn placeOrderFn
	purego.RegisterFunc(&fn, sym)
	return fn(args.Symbol, args.Side, args.AmountKind, args.Amount, args.AmountPrecision, args.Mode), nil
}

func (l *Library) TradeCustomPrice(args OrderArgs, price string, pricePrecision int32) (int32, error) {
	handle, err := l.open()
	if err != nil {
		return 0, err
	}
	sym, err := l.symbol(handle, "TradeCustomPrice")
	if err != nil {
		return 0, err
	}
	var fn tradeCustomPriceFn
	purego.RegisterFunc(&fn, sym)
	return fn(args.Symbol, args.Side, args.AmountKind, args.Amount, args.AmountPrecision, args.Mode, price, pricePrecision), nil
}
