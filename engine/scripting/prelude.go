package scripting

// preludeSource is evaluated into every fresh assembly state before any game
// script runs. It defines the class machinery game scripts declare types
// with, and the EngineSubsystem base type the host discovers subclasses of.
const preludeSource = `
-- Type registry for everything declared through class().
__script_types = {}

function class(name, base)
    local cls = setmetatable({ __typename = name }, { __index = base })
    cls.__index = cls
    __script_types[#__script_types + 1] = cls
    return cls
end

-- Base type every engine subsystem derives from. The host writes id before
-- initialize runs; can_ever_tick gates the per-frame tick.
EngineSubsystem = class("EngineSubsystem")
EngineSubsystem.id = -1
EngineSubsystem.can_ever_tick = true

function EngineSubsystem:initialize() end
function EngineSubsystem:tick(dt) end
function EngineSubsystem:on_scene_pre_destroy(scene) end
function EngineSubsystem:on_scene_pre_initialize(scene) end
function EngineSubsystem:on_scene_post_initialize(scene) end

-- Strict subclass walk: a type is not a subclass of itself.
function __is_subclass_of(cls, base)
    local mt = getmetatable(cls)
    local parent = mt and mt.__index
    while parent ~= nil do
        if parent == base then
            return true
        end
        mt = getmetatable(parent)
        parent = mt and mt.__index
    end
    return false
end

function __new_instance(cls)
    return setmetatable({}, cls)
end
`
