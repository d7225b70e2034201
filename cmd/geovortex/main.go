package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/geovortex/internal/compositor"
	"github.com/ivlev/geovortex/internal/config"
	"github.com/ivlev/geovortex/internal/indicator"
	"github.com/ivlev/geovortex/internal/scene"
	"github.com/ivlev/geovortex/internal/system"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}

	// Создаем нужные директории, если их нет
	for _, d := range []string{cfg.SceneDir, cfg.OutputDir} {
		os.MkdirAll(d, 0755)
	}

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var runErr error
	switch os.Args[1] {
	case "bake":
		runErr = runBake(cfg, os.Args[2:])
	case "seed":
		runErr = runSeed(cfg, os.Args[2:])
	case "print":
		runErr = runPrint(cfg, os.Args[2:])
	case "invert":
		runErr = runInvert(cfg, os.Args[2:])
	case "scale":
		runErr = runScale(cfg, os.Args[2:])
	case "prune":
		runErr = runPrune(cfg, os.Args[2:])
	case "preroll":
		runErr = runPreroll(cfg, os.Args[2:])
	case "help", "-h", "-help", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Неизвестная команда %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		log.Fatalf("[-] Ошибка: %v", runErr)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `geovortex <команда> [флаги]

Команды:
  bake     Запечь вращение терры из strength силового поля
  seed     Записать тройки "кадр strength flow" в треки драйвера
  print    Показать ключевые кадры сцены
  invert   Инвертировать знак значений трека
  scale    Умножить значения трека на коэффициент
  prune    Удалить нулевые ключевые кадры (кроме первого и последнего)
  preroll  Добавить обратное вращение перед первым кадром

Флаги каждой команды: geovortex <команда> -h
`)
}

// resolveScene chooses the newest scene in the input directory when no
// explicit path was given.
func resolveScene(cfg *config.Config, path string) (string, error) {
	if path != "" {
		return path, nil
	}
	latest, err := system.FindLatestScene(cfg.SceneDir)
	if err != nil {
		return "", fmt.Errorf("%v. Положите сцену в %s/", err, cfg.SceneDir)
	}
	fmt.Printf("[*] Выбрана сцена: %s\n", latest)
	return latest, nil
}

func outputPath(cfg *config.Config, scenePath, explicit, suffix string) string {
	if explicit != "" {
		return explicit
	}
	base := filepath.Base(scenePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(cfg.OutputDir, fmt.Sprintf("%s_%s_%s.yaml", name, suffix, timestamp))
}

func runBake(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	scenePtr := fs.String("scene", "", "Путь к сцене (по умолчанию: самая свежая в "+cfg.SceneDir+")")
	outPtr := fs.String("out", "", "Путь к результату (если пусто, генерируется в "+cfg.OutputDir+")")
	allPtr := fs.Bool("all", false, "Обработать все сцены в "+cfg.SceneDir)
	targetPtr := fs.String("target", cfg.Target, "Объект, который вращаем")
	driverPtr := fs.String("driver", cfg.Driver, "Силовое поле (источник strength)")
	indicatorPtr := fs.String("indicator", cfg.Indicator, "Объект-маркер (пусто - отключить)")
	dynamicPtr := fs.String("dynamic", "", "Имя динамической копии (по умолчанию: <driver>-dynamic)")
	noDynamicPtr := fs.Bool("no-dynamic", false, "Не создавать динамическую копию драйвера")
	scalePtr := fs.Float64("scale", cfg.Scale, "Градусы на кадр на единицу strength")
	extraPtr := fs.Int("extra-frames", cfg.ExtraFrames, "Кадры после последнего ключа драйвера (strength держится)")
	axisPtr := fs.Bool("driver-axis", false, "Вращать вокруг локальной оси Z драйвера вместо мировой Z")
	trailingPtr := fs.Bool("trailing", false, "Читать драйвер на кадре f-1 вместо f")
	posPtr := fs.String("pos-color", cfg.PositiveColor, "Цвет маркера при strength > 0")
	negPtr := fs.String("neg-color", cfg.NegativeColor, "Цвет маркера при strength < 0")
	statsPtr := fs.Bool("stats", cfg.ShowStats, "Показать отчет о производительности")
	fs.Parse(args)

	palette, err := indicator.NewPalette(*posPtr, *negPtr)
	if err != nil {
		return err
	}

	opts := compositor.Options{
		Target:         *targetPtr,
		Driver:         *driverPtr,
		Indicator:      *indicatorPtr,
		Scale:          *scalePtr,
		ExtraFrames:    *extraPtr,
		DriverAxis:     *axisPtr,
		TrailingDriver: *trailingPtr,
		Palette:        palette,
		Log:            log.New(os.Stdout, "", 0),
	}
	if !*noDynamicPtr {
		opts.Dynamic = *dynamicPtr
		if opts.Dynamic == "" {
			opts.Dynamic = *driverPtr + "-dynamic"
		}
	}

	if *allPtr {
		return bakeAll(cfg, opts, *statsPtr)
	}

	scenePath, err := resolveScene(cfg, *scenePtr)
	if err != nil {
		return err
	}

	start := time.Now()
	frames, err := bakeScene(scenePath, outputPath(cfg, scenePath, *outPtr, "baked"), opts)
	if err != nil {
		return err
	}
	if *statsPtr {
		fmt.Println(system.RuntimeReport(time.Since(start), frames))
	}
	return nil
}

func bakeScene(in, out string, opts compositor.Options) (int, error) {
	doc, err := scene.Load(in)
	if err != nil {
		return 0, err
	}
	res, err := compositor.Compose(doc, opts)
	if err != nil {
		return 0, err
	}
	if err := doc.Save(out); err != nil {
		return 0, err
	}
	fmt.Printf("[+++] Успех! Результат: %s\n", out)
	return res.Frames, nil
}

// bakeAll bakes every scene in the input directory. Scenes are
// independent documents, so they run concurrently; each individual
// pass stays strictly sequential in frame order.
func bakeAll(cfg *config.Config, opts compositor.Options, stats bool) error {
	scenes, err := system.ListScenes(cfg.SceneDir)
	if err != nil {
		return err
	}
	fmt.Printf("[*] Сцен к обработке: %d\n", len(scenes))

	start := time.Now()
	frames := make([]int, len(scenes))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, in := range scenes {
		i, in := i, in
		g.Go(func() error {
			o := opts
			o.Log = log.New(os.Stdout, fmt.Sprintf("[%s] ", filepath.Base(in)), 0)
			n, err := bakeScene(in, filepath.Join(cfg.OutputDir, filepath.Base(in)), o)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			frames[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if stats {
		total := 0
		for _, n := range frames {
			total += n
		}
		fmt.Println(system.RuntimeReport(time.Since(start), total))
	}
	return nil
}

func runSeed(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	scenePtr := fs.String("scene", "", "Путь к сцене")
	outPtr := fs.String("out", "", "Путь к результату")
	objectPtr := fs.String("object", cfg.Driver, "Объект силового поля")
	dataPtr := fs.String("data", "", "Тройки \"кадр strength flow\" через пробел")
	filePtr := fs.String("file", "", "Файл с тройками (вместо -data)")
	fs.Parse(args)

	data := *dataPtr
	if *filePtr != "" {
		b, err := os.ReadFile(*filePtr)
		if err != nil {
			return err
		}
		data = string(b)
	}
	if data == "" {
		return fmt.Errorf("нужно указать -data или -file")
	}

	keys, err := scene.ParseKeyData(data)
	if err != nil {
		return err
	}

	scenePath, err := resolveScene(cfg, *scenePtr)
	if err != nil {
		return err
	}
	doc, err := scene.Load(scenePath)
	if err != nil {
		return err
	}
	if err := doc.SeedDriver(*objectPtr, keys); err != nil {
		return err
	}
	for _, k := range keys {
		fmt.Printf("%d %g %g\n", k.Frame, k.Strength, k.Flow)
	}

	out := outputPath(cfg, scenePath, *outPtr, "seeded")
	if err := doc.Save(out); err != nil {
		return err
	}
	fmt.Printf("[+++] Записано ключей: %d. Результат: %s\n", len(keys), out)
	return nil
}

func runPrint(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("print", flag.ExitOnError)
	scenePtr := fs.String("scene", "", "Путь к сцене")
	objectPtr := fs.String("object", "", "Только этот объект (пусто - все)")
	propertyPtr := fs.String("property", "", "Только этот трек (пусто - все)")
	fs.Parse(args)

	scenePath, err := resolveScene(cfg, *scenePtr)
	if err != nil {
		return err
	}
	doc, err := scene.Load(scenePath)
	if err != nil {
		return err
	}

	found := false
	for _, o := range doc.Objects {
		if *objectPtr != "" && o.Name != *objectPtr {
			continue
		}
		for _, t := range o.Tracks {
			if *propertyPtr != "" && t.Property != *propertyPtr {
				continue
			}
			found = true
			fmt.Printf("=== %s / %s ===\n", o.Name, t.Property)
			for _, kf := range t.Keyframes {
				fmt.Printf("%6d  %s\n", kf.Frame, formatValue(kf.Value))
			}
		}
	}
	if !found {
		return fmt.Errorf("ключевые кадры не найдены")
	}
	return nil
}

func formatValue(v []float64) string {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprintf("%.6g", x)
	}
	return strings.Join(parts, " ")
}

func runInvert(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("invert", flag.ExitOnError)
	scenePtr := fs.String("scene", "", "Путь к сцене")
	outPtr := fs.String("out", "", "Путь к результату")
	objectPtr := fs.String("object", cfg.Driver, "Объект")
	propertyPtr := fs.String("property", compositor.PropStrength, "Трек")
	fs.Parse(args)

	return rewriteTrack(cfg, *scenePtr, *outPtr, *objectPtr, *propertyPtr, "inverted",
		func(t *scene.Track) int { return t.Invert() })
}

func runScale(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("scale", flag.ExitOnError)
	scenePtr := fs.String("scene", "", "Путь к сцене")
	outPtr := fs.String("out", "", "Путь к результату")
	objectPtr := fs.String("object", cfg.Driver, "Объект")
	propertyPtr := fs.String("property", compositor.PropStrength, "Трек")
	factorPtr := fs.Float64("factor", 1.0, "Коэффициент")
	fromPtr := fs.Int("from", math.MinInt32, "Применять начиная с этого кадра")
	fs.Parse(args)

	return rewriteTrack(cfg, *scenePtr, *outPtr, *objectPtr, *propertyPtr, "scaled",
		func(t *scene.Track) int { return t.ScaleValues(*factorPtr, *fromPtr) })
}

func runPrune(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("prune", flag.ExitOnError)
	scenePtr := fs.String("scene", "", "Путь к сцене")
	outPtr := fs.String("out", "", "Путь к результату")
	objectPtr := fs.String("object", cfg.Driver, "Объект")
	propertyPtr := fs.String("property", compositor.PropStrength, "Трек")
	fs.Parse(args)

	return rewriteTrack(cfg, *scenePtr, *outPtr, *objectPtr, *propertyPtr, "pruned",
		func(t *scene.Track) int { return t.PruneZeros() })
}

// rewriteTrack loads a scene, applies an in-place track operation and
// saves the result.
func rewriteTrack(cfg *config.Config, scenePath, out, object, property, suffix string, op func(*scene.Track) int) error {
	scenePath, err := resolveScene(cfg, scenePath)
	if err != nil {
		return err
	}
	doc, err := scene.Load(scenePath)
	if err != nil {
		return err
	}

	o := doc.Object(object)
	if o == nil {
		return fmt.Errorf("объект %q не найден", object)
	}
	t := o.Track(property)
	if t == nil {
		return fmt.Errorf("у объекта %q нет трека %q", object, property)
	}

	changed := op(t)

	out = outputPath(cfg, scenePath, out, suffix)
	if err := doc.Save(out); err != nil {
		return err
	}
	fmt.Printf("[+++] Изменено ключей: %d. Результат: %s\n", changed, out)
	return nil
}

func runPreroll(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("preroll", flag.ExitOnError)
	scenePtr := fs.String("scene", "", "Путь к сцене")
	outPtr := fs.String("out", "", "Путь к результату")
	objectsPtr := fs.String("objects", cfg.Target+","+cfg.Indicator, "Объекты через запятую")
	whitenPtr := fs.String("whiten", cfg.Indicator, "Объект, который держим белым (пусто - отключить)")
	degPtr := fs.Float64("deg", -12, "Градусы на кадр")
	framesPtr := fs.Int("frames", 40, "Количество кадров перед базовым")
	basePtr := fs.Int("base", 1, "Базовый кадр (не изменяется)")
	fs.Parse(args)

	var objects []string
	for _, name := range strings.Split(*objectsPtr, ",") {
		if name = strings.TrimSpace(name); name != "" {
			objects = append(objects, name)
		}
	}

	scenePath, err := resolveScene(cfg, *scenePtr)
	if err != nil {
		return err
	}
	doc, err := scene.Load(scenePath)
	if err != nil {
		return err
	}

	err = compositor.Preroll(doc, compositor.PrerollOptions{
		Objects:     objects,
		Whiten:      *whitenPtr,
		BaseFrame:   *basePtr,
		Frames:      *framesPtr,
		DegPerFrame: *degPtr,
		Log:         log.New(os.Stdout, "", 0),
	})
	if err != nil {
		return err
	}

	out := outputPath(cfg, scenePath, *outPtr, "preroll")
	if err := doc.Save(out); err != nil {
		return err
	}
	fmt.Printf("[+++] Успех! Результат: %s\n", out)
	return nil
}
