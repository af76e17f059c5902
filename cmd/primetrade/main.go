package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"primetrade/internal/app"
	"primetrade/internal/config"
	"primetrade/internal/journal"
	"primetrade/internal/log"
	"primetrade/internal/order"
	"primetrade/internal/store"
	"primetrade/internal/strategy"
	"primetrade/internal/web"
)

const usageText = `用法: primetrade <command> [flags]

命令:
  market      提交市价单
  limit       提交限价单
  stop-limit  提交止损限价单
  twap        执行时间切片策略
  oco         提交双腿组合订单（模拟 OCO）
  serve       启动下单表单服务

每个命令支持 -h 查看对应参数。凭据通过 BINANCE_API_KEY /
BINANCE_API_SECRET 环境变量或配置文件提供，支持 .env 文件。
`

func main() {
	// .env 仅用于注入凭据等环境变量，缺失不是错误。
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usageText)
		os.Exit(2)
	}

	os.Exit(run(os.Args[1], os.Args[2:]))
}

type cliFlags struct {
	configPath     string
	realnet        bool
	symbol         string
	side           string
	quantity       string
	price          string
	stopPrice      string
	stopLimitPrice string
	tif            string
	totalQuantity  string
	slices         int
	interval       float64
	orderType      string
	limitPrice     string
}

func run(command string, args []string) int {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	var cf cliFlags
	fs.StringVar(&cf.configPath, "config", "", "配置文件路径，默认使用 configs/config.yaml")
	fs.BoolVar(&cf.realnet, "realnet", false, "使用主网（默认测试网）")

	switch command {
	case "market":
		addOrderFlags(fs, &cf, false, false)
	case "limit":
		addOrderFlags(fs, &cf, true, false)
	case "stop-limit":
		addOrderFlags(fs, &cf, true, true)
	case "oco":
		addOrderFlags(fs, &cf, true, true)
		fs.StringVar(&cf.stopLimitPrice, "stop-limit-price", "", "止损限价，缺省时等于触发价")
	case "twap":
		fs.StringVar(&cf.symbol, "symbol", "", "交易对，如 BTCUSDT")
		fs.StringVar(&cf.side, "side", "", "方向 BUY 或 SELL")
		fs.StringVar(&cf.totalQuantity, "total-quantity", "", "总数量")
		fs.IntVar(&cf.slices, "slices", 0, "切片数量")
		fs.Float64Var(&cf.interval, "interval", 0, "切片间隔秒数")
		fs.StringVar(&cf.orderType, "type", "MARKET", "每片订单类型 MARKET 或 LIMIT")
		fs.StringVar(&cf.limitPrice, "limit-price", "", "LIMIT 模式下的价格")
	case "serve":
	default:
		fmt.Fprintf(os.Stderr, "未知命令 %q\n\n%s", command, usageText)
		return 2
	}

	_ = fs.Parse(args)

	cfg, err := config.Load(cf.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		return 1
	}
	if cf.realnet {
		cfg.Exchange.UseTestnet = false
	}

	logger, err := log.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		return 1
	}
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	sqliteStore, err := store.NewSQLite(cfg.Database)
	if err != nil {
		logger.Error("初始化数据库失败", zap.Error(err))
		return 1
	}
	defer func() {
		if closeErr := sqliteStore.Close(); closeErr != nil {
			logger.Warn("关闭数据库失败", zap.Error(closeErr))
		}
	}()

	journalSvc, err := journal.NewService(sqliteStore, logger)
	if err != nil {
		logger.Error("初始化订单流水失败", zap.Error(err))
		return 1
	}

	application := app.New(cfg, logger, journalSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, command, cf, cfg, application, logger); err != nil {
		logger.Error("命令执行失败", zap.String("command", command), zap.Error(err))
		return 1
	}

	return 0
}

func addOrderFlags(fs *flag.FlagSet, cf *cliFlags, withPrice, withStop bool) {
	fs.StringVar(&cf.symbol, "symbol", "", "交易对，如 BTCUSDT")
	fs.StringVar(&cf.side, "side", "", "方向 BUY 或 SELL")
	fs.StringVar(&cf.quantity, "quantity", "", "数量")
	if withPrice {
		fs.StringVar(&cf.price, "price", "", "限价")
		fs.StringVar(&cf.tif, "tif", "GTC", "timeInForce: GTC/IOC/FOK")
	}
	if withStop {
		fs.StringVar(&cf.stopPrice, "stop-price", "", "触发价")
	}
}

func dispatch(ctx context.Context, command string, cf cliFlags, cfg *config.Config, application *app.App, logger *zap.Logger) error {
	side := order.Side(strings.ToUpper(strings.TrimSpace(cf.side)))
	tif := order.TimeInForce(strings.ToUpper(strings.TrimSpace(cf.tif)))
	symbol := strings.ToUpper(strings.TrimSpace(cf.symbol))

	switch command {
	case "market":
		quantity, err := requireDecimal("quantity", cf.quantity)
		if err != nil {
			return err
		}
		result, err := application.PlaceMarket(ctx, symbol, side, quantity)
		printResponse("Market Order Response", result)
		return err

	case "limit":
		quantity, err := requireDecimal("quantity", cf.quantity)
		if err != nil {
			return err
		}
		price, err := requireDecimal("price", cf.price)
		if err != nil {
			return err
		}
		result, err := application.PlaceLimit(ctx, symbol, side, quantity, price, tif)
		printResponse("Limit Order Response", result)
		return err

	case "stop-limit":
		quantity, err := requireDecimal("quantity", cf.quantity)
		if err != nil {
			return err
		}
		price, err := requireDecimal("price", cf.price)
		if err != nil {
			return err
		}
		stopPrice, err := requireDecimal("stop-price", cf.stopPrice)
		if err != nil {
			return err
		}
		result, err := application.PlaceStopLimit(ctx, symbol, side, quantity, price, stopPrice, tif)
		printResponse("Stop-Limit Order Response", result)
		return err

	case "twap":
		total, err := requireDecimal("total-quantity", cf.totalQuantity)
		if err != nil {
			return err
		}
		params := strategy.TWAPParams{
			Symbol:        symbol,
			Side:          side,
			TotalQuantity: total,
			Slices:        cf.slices,
			Interval:      time.Duration(cf.interval * float64(time.Second)),
			Type:          order.Type(strings.ToUpper(strings.TrimSpace(cf.orderType))),
		}
		if params.Type == order.TypeLimit {
			limitPrice, err := requireDecimal("limit-price", cf.limitPrice)
			if err != nil {
				return err
			}
			params.LimitPrice = limitPrice
		}
		run, err := application.RunTWAP(ctx, params)
		printResponse("TWAP Strategy Response", run)
		return err

	case "oco":
		quantity, err := requireDecimal("quantity", cf.quantity)
		if err != nil {
			return err
		}
		price, err := requireDecimal("price", cf.price)
		if err != nil {
			return err
		}
		stopPrice, err := requireDecimal("stop-price", cf.stopPrice)
		if err != nil {
			return err
		}
		params := strategy.OCOParams{
			Symbol:       symbol,
			Side:         side,
			Quantity:     quantity,
			LimitPrice:   price,
			TriggerPrice: stopPrice,
			TimeInForce:  tif,
		}
		if cf.stopLimitPrice != "" {
			stopLimit, err := requireDecimal("stop-limit-price", cf.stopLimitPrice)
			if err != nil {
				return err
			}
			params.StopLimitPrice = stopLimit
		}
		run, err := application.PlaceOCO(ctx, params)
		printResponse("OCO Order Response", run)
		return err

	case "serve":
		server := web.NewServer(application, logger)
		return server.Start(ctx, cfg.Server.Port)

	default:
		return fmt.Errorf("未知命令 %q", command)
	}
}

func requireDecimal(name, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("缺少必填参数 -%s", name)
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("参数 -%s 解析失败: %w", name, err)
	}
	return value, nil
}

// printResponse 将结果打印为缩进 JSON，和流水记录互为补充。
func printResponse(title string, payload interface{}) {
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println(title)
	fmt.Println(strings.Repeat("=", 50))

	body, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		fmt.Printf("%+v\n", payload)
		return
	}
	fmt.Println(string(body))
}
